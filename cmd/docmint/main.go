package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/docmint/internal/config"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "tools": true, "run": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___              __  __ _     _
  |   \ ___  __ ___|  \/  (_)_ _| |_
  | |) / _ \/ _|___| |\/| | | ' \  _|
  |___/\___/\__|   |_|  |_|_|_||_\__|

  Local document and image toolbox

  Usage: docmint serve          web UI
         docmint run <tool> ... one-off transformation
         docmint --help

  MCP server mode requires piped input.`)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(filepath.Join(homeDir, ".docmint"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries CLI JSON and the MCP stream, so logs go to stderr.
	logger := cfg.NewLogger(os.Stderr)

	if len(os.Args) >= 2 && !isCLIMode() && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'docmint --help' for usage.\n")
		os.Exit(1)
	}

	args := os.Args
	if !isCLIMode() {
		// MCP server mode (default when stdin is piped)
		args = []string{os.Args[0], "mcp"}
	}

	app := newCLIApp(cfg, logger)
	if err := app.Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
