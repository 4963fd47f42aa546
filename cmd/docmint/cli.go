package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/catalog"
	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/errors"
	"github.com/hpungsan/docmint/internal/export"
	"github.com/hpungsan/docmint/internal/mcp"
	"github.com/hpungsan/docmint/internal/metrics"
	"github.com/hpungsan/docmint/internal/session"
	"github.com/hpungsan/docmint/internal/tool"
	"github.com/hpungsan/docmint/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, logger *slog.Logger) *cli.App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	app := &cli.App{
		Name:    "docmint",
		Usage:   "Local document and image toolbox",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(cfg, logger),
			toolsCmd(cfg, logger),
			runCmd(cfg, logger),
			mcpCmd(cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Interface to listen on (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			served := *cfg
			if c.IsSet("bind") {
				served.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				served.Port = c.Int("port")
			}
			if err := served.Validate(); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			reg, err := catalog.Build(&served, logger)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			m := metrics.New()
			srv, err := web.NewServer(web.Deps{
				Config:   &served,
				Registry: reg,
				Executor: tool.NewExecutor(logger, m),
				Sessions: session.NewStore(reg, served.SessionTTL(), served.MaxSessions),
				Metrics:  m,
				Logger:   logger,
				Version:  Version,
			})
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(c.Context, srv, logger)
		},
	}
}

// toolsCmd creates the tools command.
func toolsCmd(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List tools with their options and availability",
		Action: func(c *cli.Context) error {
			reg, err := catalog.Build(cfg, logger)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(map[string]any{"tools": reg.Describe()})
		},
	}
}

// runOutput describes the file written by the run command.
type runOutput struct {
	Tool      string           `json:"tool"`
	Path      string           `json:"path"`
	Name      string           `json:"name"`
	MediaType string           `json:"media_type"`
	Bytes     int              `json:"bytes"`
	Entries   []string         `json:"entries,omitempty"`
	Summary   *catalog.Summary `json:"summary,omitempty"`
}

// runCmd creates the run command.
func runCmd(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run one tool on local files (inputs are processed in argument order)",
		ArgsUsage: "<tool> <file>...",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "opt", Aliases: []string{"o"}, Usage: "Tool option as key=value (repeatable)"},
			&cli.StringFlag{Name: "out", Usage: "Output file (defaults to the result's name in the current directory)"},
			&cli.StringFlag{Name: "kind", Usage: "Declare the kind of every input (pdf|image|slideshow|text|archive) instead of detecting it"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("usage: docmint run <tool> <file>..."))
			}
			opts, err := parseOpts(c.StringSlice("opt"))
			if err != nil {
				return outputError(err)
			}
			kind, err := artifact.ParseKind(c.String("kind"))
			if err != nil {
				return outputError(err)
			}

			reg, err := catalog.Build(cfg, logger)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			desc, err := reg.Lookup(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			store := artifact.NewStore(desc.Accepts...)
			defer store.Release()
			for _, p := range c.Args().Tail() {
				data, err := export.ReadInput(p)
				if err != nil {
					return outputError(err)
				}
				if _, err := store.Put(filepath.Base(p), data, kind); err != nil {
					return outputError(err)
				}
			}

			res, err := tool.NewExecutor(logger, nil).Run(c.Context, desc, store.All(), opts)
			if err != nil {
				return outputError(err)
			}
			out, err := res.Download()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			target := c.String("out")
			if target == "" {
				target = out.Name()
			}
			if target, err = filepath.Abs(target); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			// The caller owns the destination; only the symlink and extension checks apply.
			local := *cfg
			local.AllowUnsafePaths = true
			if err := export.ValidateOutput(target, filepath.Ext(out.Name()), &local); err != nil {
				return outputError(err)
			}
			if err := export.Write(target, out.Data()); err != nil {
				return outputError(err)
			}

			output := runOutput{
				Tool:      desc.ID,
				Path:      target,
				Name:      out.Name(),
				MediaType: out.MediaType(),
				Bytes:     out.Size(),
			}
			if res.Bundle != nil {
				output.Entries = res.Bundle.Names()
			} else {
				output.Summary = catalog.Summarize(out)
			}
			return outputJSON(output)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the tools over MCP on stdio (default when stdin is piped)",
		Action: func(c *cli.Context) error {
			reg, err := catalog.Build(cfg, logger)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return mcp.Run(reg, tool.NewExecutor(logger, nil), cfg, Version, logger)
		},
	}
}

// parseOpts turns repeated key=value flags into a raw option map.
// A later value for the same key wins.
func parseOpts(pairs []string) (map[string]any, error) {
	opts := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("option %q must be key=value", p))
		}
		opts[key] = value
	}
	return opts, nil
}

// outputJSON writes JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if mErr := errors.As(err); mErr != nil {
		return cli.Exit(fmt.Sprintf("[%s] %s", mErr.Code, mErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
