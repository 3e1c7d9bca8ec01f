package generate

import (
	"context"
	"sync"

	"github.com/promptboard/promptboard/internal/gemini"
	"github.com/promptboard/promptboard/internal/raster"
)

// ServiceHolder is a swappable Service and VideoService. The server starts
// without a credential; once the user saves a valid API key the live client
// is swapped in without restarting anything. Calls before the swap fail
// with the missing-credential error, which classifies as KindCredential and
// routes the user to credential entry.
type ServiceHolder struct {
	mu    sync.RWMutex
	svc   Service
	video VideoService
}

// NewServiceHolder returns an empty holder.
func NewServiceHolder() *ServiceHolder {
	return &ServiceHolder{}
}

// Swap installs the live service pair.
func (h *ServiceHolder) Swap(svc Service, video VideoService) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.svc = svc
	h.video = video
}

// Ready reports whether a live service is installed.
func (h *ServiceHolder) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.svc != nil
}

func (h *ServiceHolder) get() Service {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.svc
}

func (h *ServiceHolder) getVideo() VideoService {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.video
}

// GenerateImage implements Service.
func (h *ServiceHolder) GenerateImage(ctx context.Context, prompt, aspectRatio string) (raster.Payload, error) {
	svc := h.get()
	if svc == nil {
		return raster.Payload{}, gemini.ErrMissingAPIKey
	}
	return svc.GenerateImage(ctx, prompt, aspectRatio)
}

// EditImage implements Service.
func (h *ServiceHolder) EditImage(ctx context.Context, req gemini.EditRequest) (raster.Payload, error) {
	svc := h.get()
	if svc == nil {
		return raster.Payload{}, gemini.ErrMissingAPIKey
	}
	return svc.EditImage(ctx, req)
}

// ParseEntities implements Service.
func (h *ServiceHolder) ParseEntities(ctx context.Context, prompt string, characterNames, backgroundNames []string) (gemini.EntityMatch, error) {
	svc := h.get()
	if svc == nil {
		return gemini.EntityMatch{}, gemini.ErrMissingAPIKey
	}
	return svc.ParseEntities(ctx, prompt, characterNames, backgroundNames)
}

// StartVideo implements VideoService.
func (h *ServiceHolder) StartVideo(ctx context.Context, prompt string, source raster.Payload, aspectRatio string) (*gemini.VideoOperation, error) {
	svc := h.getVideo()
	if svc == nil {
		return nil, gemini.ErrMissingAPIKey
	}
	return svc.StartVideo(ctx, prompt, source, aspectRatio)
}

// PollVideo implements VideoService.
func (h *ServiceHolder) PollVideo(ctx context.Context, op *gemini.VideoOperation) (bool, []byte, error) {
	svc := h.getVideo()
	if svc == nil {
		return false, nil, gemini.ErrMissingAPIKey
	}
	return svc.PollVideo(ctx, op)
}
