// Package main is the sdkchat CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/sdkchat/internal/answer"
	"github.com/hyperjump/sdkchat/internal/cli"
	"github.com/hyperjump/sdkchat/internal/config"
	"github.com/hyperjump/sdkchat/internal/models"
	"github.com/hyperjump/sdkchat/internal/server"
	"github.com/hyperjump/sdkchat/internal/tui"
	"github.com/hyperjump/sdkchat/internal/watcher"
	"github.com/hyperjump/sdkchat/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/sdkchat/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory takes precedence, and if neither file exists the
// built-in defaults are used. An explicit path must exist.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// .env is optional; it usually carries OPENAI_API_KEY for the openai generator.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve", "server":
		runServe()
	case "chat":
		runChat()
	case "ask":
		os.Exit(runAsk())
	case "search":
		os.Exit(runSearch())
	case "version", "--version", "-v":
		fmt.Printf("sdkchat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are accepted by every command that builds the index.
type commonFlags struct {
	configPath *string
	debug      *bool
	topK       *int
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
		topK:       fs.Int("top-k", 0, "documents retrieved per question (default from config)"),
	}
}

// setup loads config, applies flag overrides and builds the logger. quiet
// keeps info lines off the terminal for the interactive commands.
func setup(flags commonFlags, quiet bool) (*config.Config, *zap.Logger) {
	cfg, resolvedConfigPath, err := loadConfig(*flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *flags.topK > 0 {
		cfg.Retrieval.TopK = *flags.topK
	}
	debugMode := cfg.Debug || *flags.debug
	var logger *zap.Logger
	if quiet {
		logger, err = utils.NewQuietLogger(debugMode)
	} else {
		logger, err = utils.NewLogger(debugMode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.Strings("corpus", cfg.Corpus.Directories))
	return cfg, logger
}

// mustInitialize builds the components or exits with the failure.
func mustInitialize(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Components {
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return components
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	flags := addCommonFlags(fs)
	port := fs.Int("port", 0, "listen port (default from config)")
	watch := fs.Bool("watch", false, "warn when the corpus changes on disk")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(flags, false)
	defer logger.Sync()
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *watch {
		cfg.Watch.Enabled = true
	}

	components := mustInitialize(context.Background(), cfg, logger)
	defer components.Close()

	opts := []server.Option{
		server.WithCorpusReport(components.Report),
		server.WithTopK(components.Service.TopK()),
	}
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		drift := watcher.NewWatcher(cfg.Corpus.Directories,
			watcher.WithLogger(logger),
			watcher.WithDebounce(time.Duration(cfg.Watch.Debounce)*time.Millisecond),
		)
		if err := drift.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer drift.Stop()
		logger.Info("watching corpus for changes", zap.Strings("roots", drift.Roots()))
		opts = append(opts, server.WithDrift(drift))
	}

	srv := server.NewServer(components.Service, components.Engine, &cfg.Server, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	flags := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(flags, true)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "Indexing SDK corpus...")
	components := mustInitialize(ctx, cfg, logger)
	defer components.Close()

	summary := fmt.Sprintf("%d documents indexed (%s, %d dims), %d skipped",
		components.Engine.Size(), components.Engine.IndexType(),
		components.Engine.Dimensions(), len(components.Report.Skipped))
	if err := tui.Run(ctx, components.Service, tui.WithSummary(summary)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: sdkchat ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
}

// runAsk returns the exit code so deferred cleanup runs before the process exits.
func runAsk() int {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	flags := addCommonFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	question := joinArgs(fs.Args())
	if question == "" {
		fmt.Println(answer.EmptyQuestionMessage)
		return 1
	}

	cfg, logger := setup(flags, true)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	components := mustInitialize(ctx, cfg, logger)
	defer components.Close()

	return ask(ctx, os.Stdout, components.Service, question, format)
}

// ask writes the answer to w and returns the process exit code.
func ask(ctx context.Context, w io.Writer, svc server.AnswerService, question string, format cli.OutputFormat) int {
	a, askErr := svc.Ask(ctx, question)
	if err := cli.WriteAnswer(w, a, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		return 1
	}
	if askErr != nil {
		return 1
	}
	return 0
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: sdkchat search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Shows the documents that would be placed in the prompt, nearest first.\n\n")
	fs.PrintDefaults()
}

func runSearch() int {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	flags := addCommonFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	query := joinArgs(fs.Args())
	if query == "" {
		printSearchUsage(fs)
		return 1
	}

	cfg, logger := setup(flags, true)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	components := mustInitialize(ctx, cfg, logger)
	defer components.Close()

	response, err := components.Engine.Query(ctx, &models.SearchQuery{Query: query}, cfg.Retrieval.TopK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		return 1
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

// joinArgs joins all positional args with spaces so multi-word input works
// the same with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// positional text to the front so that flag.Parse sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printUsage() {
	fmt.Println(`sdkchat - Ask questions about the Dynamics 365 Commerce SDK

Usage:
  sdkchat serve [flags]            Start the web form and JSON API
  sdkchat chat [flags]             Interactive terminal chat
  sdkchat ask [flags] <question>   Print one answer and exit
  sdkchat search [flags] <query>   Show the documents retrieved for a query
  sdkchat version                  Show version
  sdkchat help                     Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/sdkchat/config.yaml,
                     ./config.yaml when present, built-in defaults otherwise)
  --debug            Enable debug logging
  --top-k int        Documents retrieved per question (default from config, 5)

Serve Flags:
  --port int         Listen port (default from config, 8080)
  --watch            Warn when the corpus changes on disk (restart to re-index)

Ask/Search Flags:
  --output string    Output format: text or json (default: text)

Every command indexes the corpus at startup. Missing corpus directories are
extracted from the zip archive of the same name.

Examples:
  sdkchat serve
  sdkchat chat
  sdkchat ask "How do I add a custom button to the POS?"
  sdkchat search --top-k 10 --output json "receipt printing"`)
}
