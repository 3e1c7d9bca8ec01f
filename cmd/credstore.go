package cmd

import (
	"context"
	"fmt"

	"github.com/promptboard/promptboard/internal/config"
	"github.com/promptboard/promptboard/internal/gemini"
	"github.com/promptboard/promptboard/internal/generate"
	"github.com/promptboard/promptboard/internal/log"
)

// credentialStore backs the /api/key endpoints: it validates a submitted
// key against the service, persists it to the credential file, and swaps
// the live generation services so the key takes effect immediately.
type credentialStore struct {
	holder *generate.ServiceHolder
	models gemini.Models
	logger log.Logger
}

func (c *credentialStore) Configured() bool {
	return c.holder.Ready()
}

func (c *credentialStore) Set(ctx context.Context, key string) error {
	ok, err := gemini.ValidateKey(ctx, key)
	if err != nil {
		return fmt.Errorf("validating key: %w", err)
	}
	if !ok {
		return gemini.ErrMissingAPIKey
	}

	client, err := gemini.NewWithModels(ctx, key, c.models, c.logger)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	if err := config.SaveAPIKey(key); err != nil {
		// The key works; losing persistence only costs re-entry after a
		// restart.
		c.logger.Warn("failed to persist credential", "error", err)
	}

	c.holder.Swap(client, client)
	c.logger.Info("credential installed")
	return nil
}
