package mcp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/tool"
)

const listToolsName = "list_tools"

// toolEntry pairs a tool definition with its handler.
type toolEntry struct {
	def     mcp.Tool
	handler server.ToolHandlerFunc
}

var listToolsDef = mcp.NewTool(listToolsName,
	mcp.WithDescription("List every DocMint tool with its accepted input kinds, options and availability."),
)

// entries builds one MCP tool per usable descriptor plus list_tools.
// Tools whose backend is missing are left out; list_tools still reports them.
func entries(h *Handlers) []toolEntry {
	out := []toolEntry{{def: listToolsDef, handler: h.HandleListTools}}
	for _, d := range h.reg.List() {
		if h.reg.Availability(d.ID) != nil {
			continue
		}
		out = append(out, toolEntry{def: toolDef(d), handler: h.runHandler(d)})
	}
	return out
}

// toolDef derives the MCP input schema from a descriptor.
func toolDef(d *tool.Descriptor) mcp.Tool {
	inputsHelp := "Absolute path of the input file."
	if d.Multiple {
		inputsHelp = "Absolute paths of the input files, in processing order."
	}
	kinds := make([]string, len(d.Accepts))
	for i, k := range d.Accepts {
		kinds[i] = string(k)
	}

	return mcp.NewTool(d.ID,
		mcp.WithDescription(fmt.Sprintf("%s (%s). %s\nAccepts: %s.", d.Name, d.Category, d.Description, strings.Join(kinds, ", "))),
		mcp.WithArray("inputs",
			mcp.Required(),
			mcp.Description(inputsHelp),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithObject("options",
			mcp.Description("Tool options; omitted ones take their defaults."),
			mcp.Properties(optionSchema(d.Options)),
		),
		mcp.WithString("kind",
			mcp.Description("Declare the kind of every input instead of detecting it from content."),
			mcp.Enum(kinds...),
		),
		mcp.WithString("output",
			mcp.Description("Where to write the result. Must sit directly in ~/.docmint/exports or an allowed_paths directory. Defaults to a timestamped file in ~/.docmint/exports."),
		),
	)
}

func optionSchema(opts []tool.Option) map[string]any {
	props := make(map[string]any, len(opts))
	for _, o := range opts {
		p := map[string]any{"description": o.Label}
		if o.Help != "" {
			p["description"] = o.Label + ". " + o.Help
		}
		if o.Default != nil {
			p["default"] = o.Default
		}
		switch o.Type {
		case tool.OptInt:
			p["type"] = "integer"
			if o.Bounded {
				p["minimum"] = o.Min
				p["maximum"] = o.Max
			}
		case tool.OptBool:
			p["type"] = "boolean"
		case tool.OptEnum:
			p["type"] = "string"
			p["enum"] = o.Choices
		default:
			p["type"] = "string"
		}
		props[o.Name] = p
	}
	return props
}

// NewServer creates an MCP server exposing the registry's tools.
func NewServer(reg *tool.Registry, exec *tool.Executor, cfg *config.Config, version string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"docmint",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(reg, exec, cfg, logger)
	for _, e := range entries(h) {
		s.AddTool(e.def, e.handler)
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(reg *tool.Registry, exec *tool.Executor, cfg *config.Config, version string, logger *slog.Logger) error {
	s := NewServer(reg, exec, cfg, version, logger)
	return server.ServeStdio(s)
}
