// Package main provides the marker-watch CLI application.
//
// marker-watch monitors a directory tree for files containing the
// 'claude!' marker and asynchronously launches the claude CLI for every
// detection. A companion seed command periodically marks a random
// markdown file under the same tree for processing.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Parse()

	if *showVersion {
		fmt.Printf("marker-watch %s\n", version)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	command := args[0]

	switch command {
	case "watch":
		return runWatchCommand(*configPath, args[1:])
	case "seed":
		return runSeedCommand(*configPath, args[1:])
	case "history":
		return runHistoryCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runWatchCommand runs the watch command.
func runWatchCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	logLevel := fs.String("log-level", "", "override configured log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: marker-watch watch [flags] <path>")
	}

	cmd := &watchCommand{
		root:       fs.Arg(0),
		configPath: configPath,
		logLevel:   *logLevel,
	}

	return cmd.Execute()
}

// runSeedCommand runs the seed command.
func runSeedCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	interval := fs.Duration("interval", 0, "override configured seeding interval (e.g., 5m, 30s)")
	once := fs.Bool("once", false, "perform a single pass and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: marker-watch seed [flags] <path>")
	}

	cmd := &seedCommand{
		root:       fs.Arg(0),
		configPath: configPath,
		interval:   *interval,
		once:       *once,
	}

	return cmd.Execute()
}

// runHistoryCommand runs the history command.
func runHistoryCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum number of records to show")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &historyCommand{
		configPath: configPath,
		limit:      *limit,
	}

	return cmd.Execute()
}

// showUsage prints usage information.
func showUsage() error {
	fmt.Print(`marker-watch - claude! marker automation for a directory tree

Usage:
  marker-watch [flags] <command> [command flags] [arguments]

Commands:
  watch <path>    Watch the directory tree for files containing the
                  'claude!' marker and launch claude for each detection
  seed <path>     Periodically mark a random markdown file for processing
  history         Show recent dispatches
  help            Show this help

Global Flags:
  -config string  Path to configuration file
  -version        Show version information

Examples:
  marker-watch watch ~/vault
  marker-watch watch -log-level debug ~/vault
  marker-watch seed -interval 10m ~/vault
  marker-watch seed -once ~/vault
  marker-watch history -limit 50
`)
	return nil
}
