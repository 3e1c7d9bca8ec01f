package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptboard/promptboard/api"
	"github.com/promptboard/promptboard/internal/config"
	"github.com/promptboard/promptboard/internal/gemini"
	"github.com/promptboard/promptboard/internal/generate"
	"github.com/promptboard/promptboard/internal/log"
	"github.com/promptboard/promptboard/internal/observability"
	"github.com/promptboard/promptboard/internal/session"
)

// pruneInterval is how often idle sessions are swept.
const pruneInterval = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve [addr]",
	Short: "Start the HTTP backend",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	addr := cfg.Addr
	if len(args) > 0 {
		addr = args[0]
	}
	if err := validateAddr(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}

	logger := log.New(log.Config{
		Level: parseLogLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	logger.Info("starting promptboard", "version", AppVersion)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.Setup(ctx, cfg.Tracing, logger)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	models := gemini.Models{
		TextToImage: cfg.TextToImageModel,
		EntityParse: cfg.EntityModel,
		Video:       cfg.VideoModel,
	}

	// Generation services are swappable so a credential installed over the
	// API takes effect without a restart. Until one is installed, requests
	// fail with a credential-kind error the client routes to key entry.
	holder := generate.NewServiceHolder()
	if cfg.HasAPIKey() {
		client, err := gemini.NewWithModels(ctx, cfg.APIKey, models, logger)
		if err != nil {
			logger.Warn("stored credential unusable, starting without one", "error", err)
		} else {
			holder.Swap(client, client)
		}
	}

	retry := generate.DefaultRetryConfig()
	if cfg.GenMaxAttempts > 0 {
		retry.MaxAttempts = cfg.GenMaxAttempts
	}
	orch := generate.New(holder, retry, logger)
	orch.FlashModel = cfg.FlashModel
	orch.ProModel = cfg.ProModel

	videoCfg := generate.DefaultVideoConfig()
	if cfg.VideoPollInterval > 0 {
		videoCfg.PollInterval = cfg.VideoPollInterval
	}
	videoGen := generate.NewVideoGenerator(holder, videoCfg, logger)

	manager := session.NewManager(orch, videoGen, logger)
	go pruneLoop(ctx, manager, cfg.SessionIdleTimeout, logger)

	creds := &credentialStore{holder: holder, models: models, logger: logger}

	server := api.NewServer(manager, creds, logger)
	return server.Run(ctx, addr)
}

// pruneLoop sweeps idle sessions until the context ends.
func pruneLoop(ctx context.Context, manager *session.Manager, maxIdle time.Duration, logger log.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := manager.PruneIdle(maxIdle); n > 0 {
				logger.Info("pruned idle sessions", "count", n)
			}
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
