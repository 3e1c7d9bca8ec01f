// Package gemini adapts google.golang.org/genai to the narrow contract the
// generation orchestrator depends on: text-to-image, reference-based image
// editing, constrained entity extraction, video generation, and credential
// validation.
//
// The adapter never classifies failures: it surfaces the SDK's structured
// errors (genai.APIError) and its own BlockedError untouched so the
// orchestrator's classifier stays the single judge of retryability.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// Model identifiers. The flash/pro pair are the user-selectable edit models;
// pure text-to-image always routes to the dedicated Imagen model regardless
// of that toggle.
const (
	ModelFlashImage  = "gemini-2.5-flash-image"
	ModelProImage    = "gemini-3-pro-image-preview"
	ModelTextToImage = "imagen-4.0-generate-001"
	ModelEntityParse = "gemini-2.5-flash"
	ModelVideo       = "veo-3.0-generate-001"
)

// Models selects the model identifier per operation. Zero-value fields fall
// back to the package defaults above.
type Models struct {
	TextToImage string
	EntityParse string
	Video       string
}

func (m Models) withDefaults() Models {
	if m.TextToImage == "" {
		m.TextToImage = ModelTextToImage
	}
	if m.EntityParse == "" {
		m.EntityParse = ModelEntityParse
	}
	if m.Video == "" {
		m.Video = ModelVideo
	}
	return m
}

// Client wraps a genai client with the operations promptboard needs.
type Client struct {
	gc     *genai.Client
	models Models
	logger *slog.Logger
}

// New creates a Client authenticated against the Gemini API, using the
// default model set.
func New(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	return NewWithModels(ctx, apiKey, Models{}, logger)
}

// NewWithModels creates a Client with per-operation model overrides.
func NewWithModels(ctx context.Context, apiKey string, models Models, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{gc: gc, models: models.withDefaults(), logger: logger}, nil
}

// ValidateKey confirms a credential is accepted by the service using a
// minimal token-count probe. A false return with nil error means the service
// rejected the key; an error means the check itself could not run.
func ValidateKey(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return false, fmt.Errorf("creating genai client: %w", err)
	}

	_, err = gc.Models.CountTokens(ctx, ModelEntityParse,
		genai.Text("ok"), nil)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && (apiErr.Code == 401 || apiErr.Code == 403) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
