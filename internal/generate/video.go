package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptboard/promptboard/internal/gemini"
	"github.com/promptboard/promptboard/internal/raster"
)

// VideoService is the submit-then-poll slice of the external service.
type VideoService interface {
	StartVideo(ctx context.Context, prompt string, source raster.Payload, aspectRatio string) (*gemini.VideoOperation, error)
	PollVideo(ctx context.Context, op *gemini.VideoOperation) (done bool, video []byte, err error)
}

// VideoConfig tunes the long-poll loop.
type VideoConfig struct {
	PollInterval    time.Duration // between status checks
	MaxPollFailures int           // consecutive transient poll failures tolerated
	FailureBackoff  time.Duration // extra wait after a failed poll
}

// DefaultVideoConfig returns the production polling cadence.
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		PollInterval:    20 * time.Second,
		MaxPollFailures: 3,
		FailureBackoff:  5 * time.Second,
	}
}

// VideoGenerator drives one video generation to a terminal state.
type VideoGenerator struct {
	service VideoService
	cfg     VideoConfig
	logger  *slog.Logger
}

// NewVideoGenerator creates a VideoGenerator.
func NewVideoGenerator(service VideoService, cfg VideoConfig, logger *slog.Logger) *VideoGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg = DefaultVideoConfig()
	}
	return &VideoGenerator{service: service, cfg: cfg, logger: logger}
}

// Generate submits the video job and polls until it finishes. Transient poll
// failures are tolerated up to the configured budget; exceeding it is fatal.
func (g *VideoGenerator) Generate(ctx context.Context, prompt string, source raster.Payload, aspectRatio string) ([]byte, error) {
	op, err := g.service.StartVideo(ctx, prompt, source, aspectRatio)
	if err != nil {
		kind := Classify(err)
		return nil, newGenerationError(kind, 1, err)
	}

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("canceled while polling video: %w", ctx.Err())
		case <-time.After(g.cfg.PollInterval):
		}

		done, video, err := g.service.PollVideo(ctx, op)
		if err != nil {
			failures++
			g.logger.Debug("video poll failed", "failures", failures, "error", err)
			if failures > g.cfg.MaxPollFailures {
				return nil, newGenerationError(Classify(err), failures, err)
			}
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("canceled while polling video: %w", ctx.Err())
			case <-time.After(g.cfg.FailureBackoff):
			}
			continue
		}
		failures = 0

		if done {
			g.logger.Info("video generation complete", "bytes", len(video))
			return video, nil
		}
	}
}
