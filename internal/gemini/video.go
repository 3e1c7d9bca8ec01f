package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/promptboard/promptboard/internal/raster"
)

// VideoOperation tracks a server-assigned long-running video generation.
type VideoOperation struct {
	op *genai.GenerateVideosOperation
}

// StartVideo submits a video generation from a prompt and a source image,
// returning the operation handle to poll.
func (c *Client) StartVideo(ctx context.Context, prompt string, source raster.Payload, aspectRatio string) (*VideoOperation, error) {
	op, err := c.gc.Models.GenerateVideos(ctx, c.models.Video, prompt,
		&genai.Image{ImageBytes: source.Data, MIMEType: source.MIME},
		&genai.GenerateVideosConfig{AspectRatio: aspectRatio})
	if err != nil {
		return nil, fmt.Errorf("start video: %w", err)
	}
	c.logger.Debug("video generation submitted", "model", c.models.Video)
	return &VideoOperation{op: op}, nil
}

// PollVideo refreshes the operation once. When done it returns the video
// bytes; before that it returns (false, nil, nil).
func (c *Client) PollVideo(ctx context.Context, v *VideoOperation) (done bool, video []byte, err error) {
	op, err := c.gc.Operations.GetVideosOperation(ctx, v.op, nil)
	if err != nil {
		return false, nil, fmt.Errorf("poll video: %w", err)
	}
	v.op = op

	if !op.Done {
		return false, nil, nil
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 ||
		op.Response.GeneratedVideos[0].Video == nil ||
		len(op.Response.GeneratedVideos[0].Video.VideoBytes) == 0 {
		return true, nil, ErrEmptyResponse
	}
	return true, op.Response.GeneratedVideos[0].Video.VideoBytes, nil
}
