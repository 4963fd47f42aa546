package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	// Bind is the interface the web UI listens on.
	Bind string `json:"bind,omitempty" yaml:"bind,omitempty"`

	// Port is the web UI port.
	Port int `json:"port,omitempty" yaml:"port,omitempty" validate:"min=1,max=65535"`

	// MaxUploadMB caps the size of one multipart upload (all files together).
	// Enforced at the HTTP boundary, never inside the transformation core.
	MaxUploadMB int `json:"max_upload_mb,omitempty" yaml:"max_upload_mb,omitempty" validate:"min=1,max=4096"`

	// SessionTTLMinutes is how long an idle browser session keeps its active tool.
	SessionTTLMinutes int `json:"session_ttl_minutes,omitempty" yaml:"session_ttl_minutes,omitempty" validate:"min=1"`

	// MaxSessions bounds the in-memory session table (least recently used evicted first).
	MaxSessions int `json:"max_sessions,omitempty" yaml:"max_sessions,omitempty" validate:"min=1"`

	// PdftoppmPath is the rasterization backend binary (name on PATH or absolute path).
	// When it cannot be found, pdf_to_images is reported unavailable.
	PdftoppmPath string `json:"pdftoppm_path,omitempty" yaml:"pdftoppm_path,omitempty"`

	// RasterDPI is the default resolution for pdf_to_images.
	RasterDPI int `json:"raster_dpi,omitempty" yaml:"raster_dpi,omitempty" validate:"min=50,max=600"`

	// JPEGQuality is the default encoder quality for JPEG outputs.
	JPEGQuality int `json:"jpeg_quality,omitempty" yaml:"jpeg_quality,omitempty" validate:"min=10,max=100"`

	// DisabledTools is a list of tool ids to exclude from every surface.
	// Unknown tool ids are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" yaml:"disabled_tools,omitempty"`

	// AllowedPaths is an allowlist of directories MCP tools may write outputs to.
	// Paths outside ~/.docmint/exports require either being in this list or AllowUnsafePaths=true.
	AllowedPaths []string `json:"allowed_paths,omitempty" yaml:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for MCP outputs.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" yaml:"allow_unsafe_paths,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bind:              "127.0.0.1",
		Port:              8088,
		MaxUploadMB:       50,
		SessionTTLMinutes: 120,
		MaxSessions:       1024,
		PdftoppmPath:      "pdftoppm",
		RasterDPI:         150,
		JPEGQuality:       90,
		LogLevel:          "info",
	}
}

// Load loads configuration from baseDir/config.json and baseDir/config.yaml.
// Missing files are skipped; YAML values take precedence over JSON ones.
// The result is validated before it is returned.
func Load(baseDir string) (*Config, error) {
	fromJSON, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	fromYAML, err := loadFileRaw(filepath.Join(baseDir, "config.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), fromJSON), fromYAML)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path, decoding by extension.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(configPath), err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(configPath), err)
		}
	}

	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Field(), fe.Tag()+paramSuffix(fe.Param()), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// Addr returns the host:port the web UI binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SessionTTL returns the idle session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Bind = overlay.Bind
	if result.Bind == "" {
		result.Bind = base.Bind
	}

	result.Port = pickInt(overlay.Port, base.Port)
	result.MaxUploadMB = pickInt(overlay.MaxUploadMB, base.MaxUploadMB)
	result.SessionTTLMinutes = pickInt(overlay.SessionTTLMinutes, base.SessionTTLMinutes)
	result.MaxSessions = pickInt(overlay.MaxSessions, base.MaxSessions)
	result.RasterDPI = pickInt(overlay.RasterDPI, base.RasterDPI)
	result.JPEGQuality = pickInt(overlay.JPEGQuality, base.JPEGQuality)

	result.PdftoppmPath = overlay.PdftoppmPath
	if result.PdftoppmPath == "" {
		result.PdftoppmPath = base.PdftoppmPath
	}

	result.LogLevel = strings.ToLower(strings.TrimSpace(overlay.LogLevel))
	if result.LogLevel == "" {
		result.LogLevel = base.LogLevel
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)

	return result
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
