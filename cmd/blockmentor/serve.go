package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/cli"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/blockinfo"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/cache"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/config"
	bmerrors "github.com/randalmurphal/blockmentor/pkg/blockmentor/errors"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/flowchart"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/llm"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/observability"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/retrieval"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/server"
)

// ServeCommand runs the HTTP API until interrupted.
type ServeCommand struct {
	Ui cli.Ui
}

func (c *ServeCommand) Help() string {
	return strings.TrimSpace(`
Usage: blockmentor serve [options]

  Starts the mentor API. Settings come from built-in defaults, the
  optional config file, the .env file and the environment, later
  sources winning.

  Tracing and metrics are exported when OTEL_TRACES_EXPORTER or
  OTEL_METRICS_EXPORTER is set (otlp, console, prometheus or none).

Options:

  -config=path   YAML or JSON config file.
  -env=path      Dotenv file to read. Defaults to ".env".
`)
}

func (c *ServeCommand) Synopsis() string {
	return "Run the mentor HTTP API"
}

func (c *ServeCommand) Run(args []string) int {
	var configPath, envPath string
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() { c.Ui.Error(c.Help()) }
	fs.StringVar(&configPath, "config", "", "config file")
	fs.StringVar(&envPath, "env", ".env", "dotenv file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	settings, err := loadSettings(configPath, envPath)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	logger, err := observability.NewLogger(os.Stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := setupTelemetry(ctx)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error configuring telemetry: %s", err))
		return 1
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	svc, err := buildService(settings, logger)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	defer svc.Close()

	srv := server.New(svc, server.Config{
		Addr:            settings.Addr,
		CORSOrigins:     settings.CORSOrigins,
		ShutdownTimeout: settings.ShutdownTimeout,
	}, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		c.Ui.Error(fmt.Sprintf("Server error: %s", err))
		return 1
	}
	return 0
}

func loadSettings(configPath, envPath string) (config.Settings, error) {
	var envFiles []string
	if envPath != "" {
		envFiles = append(envFiles, envPath)
	}
	settings, err := config.Load(configPath, envFiles...)
	if err != nil {
		return config.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// buildService wires the models, retrieval, cache and converter described
// by settings. Telemetry goes to the global OTel providers.
func buildService(settings config.Settings, logger *slog.Logger) (*blockmentor.Service, error) {
	if settings.GoogleAPIKey == "" {
		logger.Warn("GOOGLE_API_KEY is not set; model calls will be rejected upstream")
	}
	metrics := observability.NewMetricsRecorder(nil)

	retry := bmerrors.NewRetryConfig(
		bmerrors.WithMaxAttempts(settings.MaxRetries+1),
		bmerrors.WithInitialBackoff(settings.RetryBackoff),
	)
	gemini := func(model string) *llm.Gemini {
		return llm.NewGemini(model,
			llm.WithAPIKey(settings.GoogleAPIKey),
			llm.WithBaseURL(settings.GeminiBaseURL),
			llm.WithTemperature(settings.Temperature),
			llm.WithTimeout(settings.LLMTimeout),
			llm.WithRetry(retry),
			llm.WithLogger(logger),
		)
	}

	store, err := cache.Open(settings.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	opts := []blockmentor.Option{
		blockmentor.WithChatLLM(gemini(settings.ChatModel), settings.ChatModel),
		blockmentor.WithReasoningLLM(gemini(settings.ReasoningModel), settings.ReasoningModel),
		blockmentor.WithConverter(flowchart.New(flowchart.WithNoiseLines(settings.NoiseLines...))),
		blockmentor.WithCatalogue(blockinfo.Default()),
		blockmentor.WithLogger(logger),
		blockmentor.WithMetrics(metrics),
		blockmentor.WithSpanManager(observability.NewSpanManager(nil)),
	}
	if store != nil {
		opts = append(opts, blockmentor.WithCache(store))
	}

	if settings.RetrievalEnabled() {
		httpOpts := retrieval.HTTPOptions{
			MaxRetries: settings.MaxRetries,
			RetryWait:  settings.RetryBackoff,
			Timeout:    settings.LLMTimeout,
			Logger:     logger,
		}
		opts = append(opts, blockmentor.WithRetriever(retrieval.New(
			retrieval.NewHFEmbedder(settings.HFBaseURL, settings.EmbeddingModel, settings.HFAPIKey, httpOpts),
			retrieval.NewQdrant(settings.QdrantURL, settings.QdrantAPIKey, settings.Collection, httpOpts),
			retrieval.WithTopK(settings.TopK),
			retrieval.WithThreshold(settings.ScoreThreshold),
			retrieval.WithLogger(logger),
			retrieval.WithMetrics(metrics),
		)))
		logger.Info("retrieval enabled", "collection", settings.Collection, "top_k", settings.TopK)
	}

	return blockmentor.New(opts...), nil
}
