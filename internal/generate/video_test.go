package generate

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/promptboard/promptboard/internal/gemini"
	"github.com/promptboard/promptboard/internal/raster"
)

type fakeVideoService struct {
	startErr error
	polls    []func() (bool, []byte, error)
	pollIdx  int
}

func (f *fakeVideoService) StartVideo(context.Context, string, raster.Payload, string) (*gemini.VideoOperation, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &gemini.VideoOperation{}, nil
}

func (f *fakeVideoService) PollVideo(context.Context, *gemini.VideoOperation) (bool, []byte, error) {
	if f.pollIdx >= len(f.polls) {
		return false, nil, errors.New("polled past script")
	}
	fn := f.polls[f.pollIdx]
	f.pollIdx++
	return fn()
}

func fastVideoConfig() VideoConfig {
	return VideoConfig{
		PollInterval:    time.Millisecond,
		MaxPollFailures: 2,
		FailureBackoff:  time.Millisecond,
	}
}

func TestVideoGenerator_PollsUntilDone(t *testing.T) {
	t.Parallel()

	want := []byte("mp4 bytes")
	svc := &fakeVideoService{polls: []func() (bool, []byte, error){
		func() (bool, []byte, error) { return false, nil, nil },
		func() (bool, []byte, error) { return false, nil, nil },
		func() (bool, []byte, error) { return true, want, nil },
	}}

	g := NewVideoGenerator(svc, fastVideoConfig(), slog.New(slog.DiscardHandler))
	got, err := g.Generate(context.Background(), "make it move", raster.Payload{MIME: "image/png"}, "16:9")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("video = %q, want %q", got, want)
	}
}

func TestVideoGenerator_ToleratesTransientPollFailures(t *testing.T) {
	t.Parallel()

	pollErr := errors.New("connection reset by peer")
	svc := &fakeVideoService{polls: []func() (bool, []byte, error){
		func() (bool, []byte, error) { return false, nil, pollErr },
		func() (bool, []byte, error) { return false, nil, pollErr },
		func() (bool, []byte, error) { return true, []byte("ok"), nil },
	}}

	g := NewVideoGenerator(svc, fastVideoConfig(), slog.New(slog.DiscardHandler))
	if _, err := g.Generate(context.Background(), "p", raster.Payload{}, "1:1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestVideoGenerator_FailureBudgetExceeded(t *testing.T) {
	t.Parallel()

	pollErr := errors.New("connection reset by peer")
	svc := &fakeVideoService{polls: []func() (bool, []byte, error){
		func() (bool, []byte, error) { return false, nil, pollErr },
		func() (bool, []byte, error) { return false, nil, pollErr },
		func() (bool, []byte, error) { return false, nil, pollErr },
	}}

	g := NewVideoGenerator(svc, fastVideoConfig(), slog.New(slog.DiscardHandler))
	_, err := g.Generate(context.Background(), "p", raster.Payload{}, "1:1")

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if svc.pollIdx != 3 {
		t.Errorf("polls = %d, want 3", svc.pollIdx)
	}
}

func TestVideoGenerator_StartFailureClassified(t *testing.T) {
	t.Parallel()

	svc := &fakeVideoService{startErr: gemini.ErrMissingAPIKey}
	g := NewVideoGenerator(svc, fastVideoConfig(), slog.New(slog.DiscardHandler))
	_, err := g.Generate(context.Background(), "p", raster.Payload{}, "1:1")

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if genErr.Kind != KindCredential {
		t.Errorf("kind = %v, want %v", genErr.Kind, KindCredential)
	}
}

func TestVideoGenerator_Cancellation(t *testing.T) {
	t.Parallel()

	svc := &fakeVideoService{polls: []func() (bool, []byte, error){
		func() (bool, []byte, error) { return false, nil, nil },
	}}

	cfg := fastVideoConfig()
	cfg.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewVideoGenerator(svc, cfg, slog.New(slog.DiscardHandler))
	if _, err := g.Generate(ctx, "p", raster.Payload{}, "1:1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
