package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/catalog"
	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/errors"
	"github.com/hpungsan/docmint/internal/export"
	"github.com/hpungsan/docmint/internal/tool"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	reg    *tool.Registry
	exec   *tool.Executor
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reg *tool.Registry, exec *tool.Executor, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{reg: reg, exec: exec, cfg: cfg, logger: logger, now: time.Now}
}

// RunRequest represents the arguments of every transformation tool.
type RunRequest struct {
	Inputs  []string       `json:"inputs"`
	Options map[string]any `json:"options,omitempty"`
	Output  string         `json:"output,omitempty"`
	Kind    string         `json:"kind,omitempty"`
}

// RunResult describes the file a run wrote.
type RunResult struct {
	Tool      string           `json:"tool"`
	Path      string           `json:"path"`
	Name      string           `json:"name"`
	MediaType string           `json:"media_type"`
	Bytes     int              `json:"bytes"`
	Entries   []string         `json:"entries,omitempty"` // archive members, for multi-file results
	Summary   *catalog.Summary `json:"summary,omitempty"`
}

// HandleListTools handles the list_tools tool call.
func (h *Handlers) HandleListTools(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{"tools": h.reg.Describe()})
}

func (h *Handlers) runHandler(d *tool.Descriptor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := decode[RunRequest](req)
		if err != nil {
			return errorResult(errors.NewInvalidRequest(err.Error())), nil
		}
		result, err := h.run(ctx, d, input)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(result)
	}
}

func (h *Handlers) run(ctx context.Context, d *tool.Descriptor, in RunRequest) (*RunResult, error) {
	// Reject a bad destination before doing the work; the extension is
	// only known once the tool has produced its result.
	if in.Output != "" {
		if err := export.ValidateOutput(in.Output, "", h.cfg); err != nil {
			return nil, err
		}
	}

	kind, err := artifact.ParseKind(in.Kind)
	if err != nil {
		return nil, err
	}

	store := artifact.NewStore(d.Accepts...)
	defer store.Release()
	for _, p := range in.Inputs {
		data, err := export.ReadInput(p)
		if err != nil {
			return nil, err
		}
		if _, err := store.Put(filepath.Base(p), data, kind); err != nil {
			return nil, err
		}
	}

	res, err := h.exec.Run(ctx, d, store.All(), in.Options)
	if err != nil {
		return nil, err
	}
	out, err := res.Download()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	target := in.Output
	if target == "" {
		if target, err = export.DefaultPath(out.Name(), h.now()); err != nil {
			return nil, err
		}
	}
	if err := export.ValidateOutput(target, filepath.Ext(out.Name()), h.cfg); err != nil {
		return nil, err
	}
	if err := export.Write(target, out.Data()); err != nil {
		return nil, err
	}
	h.logger.Info("mcp output written", "tool", d.ID, "path", target, "bytes", out.Size())

	result := &RunResult{
		Tool:      d.ID,
		Path:      target,
		Name:      out.Name(),
		MediaType: out.MediaType(),
		Bytes:     out.Size(),
	}
	if res.Bundle != nil {
		result.Entries = res.Bundle.Names()
	} else {
		result.Summary = catalog.Summarize(out)
	}
	return result, nil
}

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if mErr := errors.As(err); mErr != nil {
		errorObj := map[string]any{
			"code":    mErr.Code,
			"message": mErr.Message,
			"status":  mErr.Status,
		}
		if mErr.Code != errors.ErrInternal && mErr.Details != nil {
			errorObj["details"] = mErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
