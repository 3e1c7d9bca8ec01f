package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/promptboard/promptboard/internal/raster"
)

// maskInstruction is prepended to the prompt when a paint mask accompanies
// the reference, telling the model the final image part marks editable area.
const maskInstruction = "The last image is a paint mask over the first image. " +
	"Apply the requested change only where the mask is painted and leave every other pixel untouched. "

// GenerateImage produces an image from text alone using the dedicated
// text-to-image model.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) (raster.Payload, error) {
	resp, err := c.gc.Models.GenerateImages(ctx, c.models.TextToImage, prompt, &genai.GenerateImagesConfig{
		AspectRatio: aspectRatio,
	})
	if err != nil {
		return raster.Payload{}, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return raster.Payload{}, ErrEmptyResponse
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	c.logger.Debug("text-to-image complete", "model", c.models.TextToImage, "bytes", len(img.ImageBytes))
	return raster.Payload{MIME: raster.NormalizeMIME(mime), Data: img.ImageBytes}, nil
}

// EditRequest describes one call to the image edit endpoint.
type EditRequest struct {
	Prompt      string
	Model       string // ModelFlashImage or ModelProImage
	AspectRatio string
	References  []raster.Payload
	Mask        *raster.Payload
}

// EditImage sends prompt plus ordered references (and an optional mask) to
// the image edit model and returns the first image part of the response.
func (c *Client) EditImage(ctx context.Context, req EditRequest) (raster.Payload, error) {
	if len(req.References) == 0 {
		return raster.Payload{}, fmt.Errorf("edit image: no references")
	}
	model := req.Model
	if model == "" {
		model = ModelFlashImage
	}

	prompt := req.Prompt
	parts := make([]*genai.Part, 0, len(req.References)+2)
	for _, ref := range req.References {
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MIME))
	}
	if req.Mask != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Mask.Data, req.Mask.MIME))
		prompt = maskInstruction + prompt
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	resp, err := c.gc.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &genai.ImageConfig{AspectRatio: req.AspectRatio},
		})
	if err != nil {
		return raster.Payload{}, fmt.Errorf("edit image: %w", err)
	}

	return extractImage(resp)
}

// extractImage pulls the first inline image out of a GenerateContent
// response, converting safety finishes into BlockedError.
func extractImage(resp *genai.GenerateContentResponse) (raster.Payload, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return raster.Payload{}, &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)}
	}
	if len(resp.Candidates) == 0 {
		return raster.Payload{}, ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return raster.Payload{
					MIME: raster.NormalizeMIME(part.InlineData.MIMEType),
					Data: part.InlineData.Data,
				}, nil
			}
		}
	}

	if blockedFinishReasons[cand.FinishReason] {
		return raster.Payload{}, &BlockedError{Reason: string(cand.FinishReason)}
	}
	return raster.Payload{}, ErrEmptyResponse
}
