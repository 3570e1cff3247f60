// Package main is the entry point for the zing text editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/zing/internal/app"
	"github.com/dshills/zing/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath  string
	logLevel    string
	showVersion bool
	showHelp    bool
	files       []string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if opts.showHelp {
		fs.Usage()
		return 0
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "zing %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading config: %v\n", err)
		return 1
	}

	level := cfg.Logging().Level
	if opts.logLevel != "" {
		switch opts.logLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
			return 1
		}
		level = opts.logLevel
	}
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(level),
		Output: stderr,
		Prefix: "zing",
	})
	app.SetLogger(logger)
	if path := cfg.Path(); path != "" {
		logger.Debug("loaded config %s", path)
	}

	session, err := app.NewSessionFromConfig(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	for _, path := range opts.files {
		if _, err := session.Open(path); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prompt := ""
	if isTerminal(stdin) {
		prompt = "zing> "
		fmt.Fprintf(stdout, "zing %s. Type 'help' for commands, 'quit' to exit.\n", version)
	}

	repl := NewREPL(session, stdin, stdout, prompt)
	var wg sync.WaitGroup
	wg.Go(repl.Report)

	repl.Run(ctx)

	// Close waits for pending saves; Report drains their results.
	err = session.Close()
	wg.Wait()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("zing", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&opts.showHelp, "help", false, "Show help message")
	fs.BoolVar(&opts.showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "zing - a rope-backed text editor\n\n")
		fmt.Fprintf(stderr, "Usage: zing [options] [files...]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nEnvironment:\n")
		fmt.Fprintf(stderr, "  %sLOG_LEVEL, %sTAB_SIZE, %sMAX_UNDO, ...  override config settings\n",
			config.DefaultEnvPrefix, config.DefaultEnvPrefix, config.DefaultEnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	opts.files = fs.Args()
	return opts, fs, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
