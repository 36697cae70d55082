// Package main provides the trainer application: a terminal app that signs a
// user in, shows their past workout plans, and generates new ones with an LLM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "github.com/entrhq/trainer/pkg/config"
	"github.com/entrhq/trainer/pkg/executor/tui"
	"github.com/entrhq/trainer/pkg/identity"
	"github.com/entrhq/trainer/pkg/llm"
	"github.com/entrhq/trainer/pkg/logging"
	"github.com/entrhq/trainer/pkg/observability"
	"github.com/entrhq/trainer/pkg/store"
	"github.com/entrhq/trainer/pkg/workout"
)

const version = "0.1.0"

// Config holds the command line configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	ConfigPath  string
	DataDir     string
	Timeout     time.Duration
	MetricsAddr string
	ShowVersion bool

	// Headless mode
	Request string
	History bool
	Detail  bool
	Secret  string

	// Account management
	HashPassword bool
	AddUser      string
	IssueToken   string
	TokenTTL     time.Duration
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("Trainer v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.APIKey, "api-key", "", "LLM API key (or set TRAINER_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI compatible API base URL (or set OPENAI_BASE_URL)")
	flag.StringVar(&config.Model, "model", "", "LLM model to use")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to the config file (default: ~/.trainer/config.json)")
	flag.StringVar(&config.DataDir, "data-dir", "", "Directory for file and SQLite histories (or set TRAINER_DATA_DIR)")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Generation timeout (default from config, 60s)")
	flag.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.StringVar(&config.Request, "request", "", "Generate one plan from a YAML request file and exit")
	flag.BoolVar(&config.History, "history", false, "Print past plans, newest first, and exit")
	flag.BoolVar(&config.Detail, "detail", false, "With -history, print every plan in full")
	flag.StringVar(&config.Secret, "secret", "", "Password or token for -request and -history (prompted when empty)")

	flag.BoolVar(&config.HashPassword, "hash-password", false, "Read a password and print its hash for the identity section")
	flag.StringVar(&config.AddUser, "add-user", "", "Read a password and store its hash for this user in the config file")
	flag.StringVar(&config.IssueToken, "issue-token", "", "Print a sign-in token for this user (requires identity.jwt_secret)")
	flag.DurationVar(&config.TokenTTL, "token-ttl", 30*24*time.Hour, "Lifetime of tokens printed by -issue-token")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Trainer - personal workout plans in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: trainer [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TRAINER_API_KEY    LLM API key\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY     LLM API key (Gemini OpenAI compatible endpoint)\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     LLM API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI compatible API base URL\n")
		fmt.Fprintf(os.Stderr, "  TRAINER_DATA_DIR   History directory\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  trainer -add-user sam                    # Create a user\n")
		fmt.Fprintf(os.Stderr, "  trainer                                  # Start the interactive app\n")
		fmt.Fprintf(os.Stderr, "  trainer -request run.yaml                # Generate one plan\n")
		fmt.Fprintf(os.Stderr, "  trainer -history -detail\n")
	}

	flag.Parse()
	return config
}

// validate checks that the flag combination is valid
func (c *Config) validate() error {
	modes := 0
	for _, set := range []bool{c.Request != "", c.History, c.HashPassword, c.AddUser != "", c.IssueToken != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("-request, -history, -hash-password, -add-user and -issue-token are mutually exclusive")
	}
	if c.Detail && !c.History {
		return fmt.Errorf("-detail requires -history")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("-timeout cannot be negative")
	}
	if c.IssueToken != "" && c.TokenTTL <= 0 {
		return fmt.Errorf("-token-ttl must be positive")
	}
	return nil
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	switch {
	case config.HashPassword:
		return runHashPassword()
	case config.AddUser != "":
		return runAddUser(config.AddUser)
	case config.IssueToken != "":
		return runIssueToken(config.IssueToken, config.TokenTTL)
	}

	// On error the returned logger writes to stderr and has already said so.
	logger, _ := logging.NewLogger("trainer")
	defer logger.Close()

	a, err := newApp(ctx, config, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if config.MetricsAddr != "" {
		go func() {
			if serveErr := a.metrics.Serve(ctx, config.MetricsAddr, logger.With("component", "metrics")); serveErr != nil {
				logger.Errorf("metrics server: %v", serveErr)
			}
		}()
	}

	switch {
	case config.Request != "":
		return runHeadless(ctx, config, a)
	case config.History:
		return runHistory(ctx, config, a)
	default:
		return runTUI(ctx, a)
	}
}

// app is the wiring shared by every mode that reads or writes history.
type app struct {
	history  store.Store
	log      workout.Log
	pipeline *workout.Pipeline
	resolver identity.Resolver
	metrics  *observability.Metrics
	logger   *logging.Logger
}

func newApp(ctx context.Context, config *Config, logger *logging.Logger) (*app, error) {
	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	history, err := appconfig.BuildLog(ctx, config.DataDir, logger.With("component", "store"))
	if err != nil {
		return nil, err
	}
	instrumented := observability.Instrument(history, metrics)

	resolver, err := appconfig.BuildResolver()
	if err != nil {
		history.Close()
		return nil, err
	}

	a := &app{
		history:  history,
		log:      instrumented,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}

	// History-only runs do not need an API key.
	if config.History {
		return a, nil
	}

	provider, err := appconfig.BuildProvider(config.Model, config.BaseURL, config.APIKey)
	if err != nil {
		history.Close()
		return nil, err
	}
	logger.Infof("using model %s at %s", provider.GetModel(), provider.GetBaseURL())

	a.pipeline = workout.NewPipeline(
		llm.NewPromptGenerator(provider, appconfig.SystemPrompt()),
		instrumented,
		workout.WithTimeout(appconfig.RequestTimeout(config.Timeout)),
		workout.WithLogger(logger.With("component", "pipeline")),
		workout.WithObserver(metrics),
	)
	return a, nil
}

func (a *app) close() {
	if err := a.history.Close(); err != nil {
		a.logger.Warnf("failed to close storage: %v", err)
	}
}

// runTUI executes the interactive mode
func runTUI(ctx context.Context, a *app) error {
	opts := []tui.Option{tui.WithLogger(a.logger.With("component", "tui"))}
	if ui := appconfig.GetUI(); ui != nil {
		minMinutes, maxMinutes, defMinutes := ui.DurationBounds()
		opts = append(opts,
			tui.WithDurationBounds(minMinutes, maxMinutes, defMinutes),
			tui.WithMarkdown(ui.ShouldRenderMarkdown()),
		)
	}

	executor := tui.NewExecutor(a.resolver, a.log, a.pipeline, opts...)
	return executor.Run(ctx)
}
