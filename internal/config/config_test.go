package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != DefaultConfig().Port {
		t.Fatalf("Port = %d, want %d", cfg.Port, DefaultConfig().Port)
	}
	if cfg.PdftoppmPath != "pdftoppm" {
		t.Fatalf("PdftoppmPath = %q, want pdftoppm", cfg.PdftoppmPath)
	}
}

func TestLoad_OverridesFromJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"port": 9000, "raster_dpi": 300}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.RasterDPI != 300 {
		t.Fatalf("RasterDPI = %d, want 300", cfg.RasterDPI)
	}
	if cfg.JPEGQuality != 90 {
		t.Fatalf("JPEGQuality = %d, want default 90", cfg.JPEGQuality)
	}
}

func TestLoad_YAMLOverridesJSON(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"port": 9000, "max_upload_mb": 10}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	yamlDoc := "port: 9100\ndisabled_tools:\n  - pdf_to_images\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlDoc), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.MaxUploadMB != 10 {
		t.Errorf("MaxUploadMB = %d, want 10", cfg.MaxUploadMB)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "pdf_to_images" {
		t.Errorf("DisabledTools = %v, want [pdf_to_images]", cfg.DisabledTools)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_OutOfRangeRejected(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"port too large", `{"port": 70000}`, "Port"},
		{"dpi too small", `{"raster_dpi": 10}`, "RasterDPI"},
		{"quality too large", `{"jpeg_quality": 101}`, "JPEGQuality"},
		{"bad log level", `{"log_level": "chatty"}`, "LogLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(tt.doc), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			_, err := Load(tmpDir)
			if err == nil {
				t.Fatal("Load() expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %s", err.Error(), tt.field)
			}
		})
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{Port: 8088, Bind: "127.0.0.1", PdftoppmPath: "pdftoppm"}
	overlay := &Config{Port: 9000}

	result := Merge(base, overlay)
	if result.Port != 9000 {
		t.Errorf("Port = %d, want 9000", result.Port)
	}
	if result.Bind != "127.0.0.1" {
		t.Errorf("Bind = %q, want base value", result.Bind)
	}
	if result.PdftoppmPath != "pdftoppm" {
		t.Errorf("PdftoppmPath = %q, want base value", result.PdftoppmPath)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	if !Merge(&Config{AllowUnsafePaths: true}, &Config{}).AllowUnsafePaths {
		t.Error("base true should survive empty overlay")
	}
	if !Merge(&Config{}, &Config{AllowUnsafePaths: true}).AllowUnsafePaths {
		t.Error("overlay true should win")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"merge_pptx", " pdf_text "}}
	overlay := &Config{DisabledTools: []string{"pdf_text", "pdf_to_images", ""}}

	result := Merge(base, overlay)
	want := []string{"merge_pptx", "pdf_text", "pdf_to_images"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i := range want {
		if result.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], want[i])
		}
	}

	if Merge(&Config{}, &Config{}).AllowedPaths != nil {
		t.Error("empty merge should yield nil slice")
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr() != "127.0.0.1:8088" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.MaxUploadBytes() != 50<<20 {
		t.Errorf("MaxUploadBytes() = %d", cfg.MaxUploadBytes())
	}
	if cfg.SessionTTL() != 120*time.Minute {
		t.Errorf("SessionTTL() = %v", cfg.SessionTTL())
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record should be written")
	}
}
