// Package generate orchestrates the multi-step, fallible calls that turn a
// prompt plus the current selection into a new canvas image.
//
// One submission runs a bounded retry loop; each attempt re-evaluates the
// generation path from fresh inputs, and failures are classified into a
// typed ErrorKind at the service-call boundary before the retry driver
// decides anything. Steps inside an attempt are strictly sequential and at
// most one external call is ever in flight.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/gemini"
	"github.com/promptboard/promptboard/internal/raster"
	"github.com/promptboard/promptboard/internal/refpack"
)

// outpaintPrompt is the fixed instruction for the second call of the
// two-step path. It names the chroma-key color baked into the padding.
const outpaintPrompt = "This image has solid lime green (#00FF00) regions around its borders. " +
	"Remove every lime green region and extend the existing scene naturally into that space. " +
	"Do not alter the non-green content."

// ModelChoice is the user's edit-model toggle.
type ModelChoice string

const (
	ModelFlash ModelChoice = "flash"
	ModelPro   ModelChoice = "pro"
)


// Path identifies which generation route an outcome took.
type Path string

const (
	PathTextToImage Path = "text-to-image"
	PathDirectEdit  Path = "direct-edit"
	PathOutpaint    Path = "edit-outpaint"
	PathEntityPair  Path = "entity-pair"
)

// Stage is one logged intermediate artifact of a multi-step attempt.
type Stage struct {
	Name    string
	Payload raster.Payload
}

// Outcome is a successful generation: the final image plus everything the
// session needs to apply side effects.
type Outcome struct {
	Image    raster.Payload
	Prompt   string // expanded prompt that produced the image
	Model    string
	Path     Path
	Stages   []Stage
	Attempts int
}

// Service is the slice of the external generation service the orchestrator
// consumes. Defined here, by the consumer, so tests can substitute fakes.
type Service interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (raster.Payload, error)
	EditImage(ctx context.Context, req gemini.EditRequest) (raster.Payload, error)
	ParseEntities(ctx context.Context, prompt string, characterNames, backgroundNames []string) (gemini.EntityMatch, error)
}

// Orchestrator drives generation submissions against a Service.
type Orchestrator struct {
	service Service
	logger  *slog.Logger
	retry   RetryConfig
	limiter *rate.Limiter

	// OnRetry, if set, is invoked before each backoff sleep so the caller
	// can surface a non-blocking status message.
	OnRetry func(attempt int, kind ErrorKind, delay time.Duration)

	// FlashModel and ProModel override the edit-model identifiers. Empty
	// fields use the gemini package defaults.
	FlashModel string
	ProModel   string
}

// modelID resolves the user's edit-model toggle to a model identifier.
func (o *Orchestrator) modelID(choice ModelChoice) string {
	if choice == ModelPro {
		if o.ProModel != "" {
			return o.ProModel
		}
		return gemini.ModelProImage
	}
	if o.FlashModel != "" {
		return o.FlashModel
	}
	return gemini.ModelFlashImage
}

// New creates an Orchestrator. A nil limiter installs a sane default;
// a nil logger discards nothing visible (slog default).
func New(service Service, retry RetryConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return &Orchestrator{
		service: service,
		logger:  logger,
		retry:   retry,
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Run executes one generation submission to completion. On success it
// returns the final outcome; on failure it returns a *GenerationError whose
// kind the caller can route on. The document is only read, never mutated;
// applying the result is the session's job.
func (o *Orchestrator) Run(ctx context.Context, doc *document.Document, rawPrompt string, choice ModelChoice) (*Outcome, error) {
	if rawPrompt == "" {
		return nil, ErrEmptyPrompt
	}

	prompt, forcePro := ExpandPrompt(rawPrompt)
	if forcePro {
		choice = ModelPro
	}

	tracer := otel.Tracer("promptboard/generate")
	ctx, span := tracer.Start(ctx, "generate.Run",
		trace.WithAttributes(attribute.String("model", string(choice))))
	defer span.End()

	var lastErr error
	var lastKind ErrorKind
	start := time.Now()

	for attempt := 1; attempt <= o.retry.MaxAttempts; attempt++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		outcome, err := o.attempt(ctx, doc, prompt, choice)
		if err == nil {
			outcome.Attempts = attempt
			o.logger.Info("generation succeeded",
				"path", outcome.Path,
				"attempts", attempt,
				"elapsed", time.Since(start))
			return outcome, nil
		}

		lastErr = err
		lastKind = Classify(err)
		span.AddEvent("attempt failed", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("kind", lastKind.String())))

		if !lastKind.Retryable() {
			o.logger.Warn("generation failed terminally",
				"kind", lastKind.String(), "attempt", attempt, "error", err)
			return nil, newGenerationError(lastKind, attempt, err)
		}
		if attempt == o.retry.MaxAttempts {
			break
		}

		delay := o.retry.delay(lastKind, attempt)
		if o.OnRetry != nil {
			o.OnRetry(attempt, lastKind, delay)
		}
		o.logger.Debug("retrying generation",
			"attempt", attempt, "kind", lastKind.String(), "delay", delay)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("canceled during retry backoff: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	o.logger.Warn("generation retries exhausted",
		"attempts", o.retry.MaxAttempts, "kind", lastKind.String(), "error", lastErr)
	return nil, newGenerationError(lastKind, o.retry.MaxAttempts, lastErr)
}

// attempt evaluates the generation path from fresh inputs and executes it.
func (o *Orchestrator) attempt(ctx context.Context, doc *document.Document, prompt string, choice ModelChoice) (*Outcome, error) {
	packed, err := refpack.Build(doc, doc.AspectRatio)
	if err != nil {
		return nil, err
	}

	switch {
	case len(packed.References) == 0:
		return o.generateFresh(ctx, doc, prompt, choice)

	case packed.IsSingleItem && packed.IsMatchingAspectRatio:
		refs := payloads(packed.References)
		final, err := o.service.EditImage(ctx, gemini.EditRequest{
			Prompt:      prompt,
			Model:       o.modelID(choice),
			AspectRatio: doc.AspectRatio,
			References:  refs,
			Mask:        packed.Mask,
		})
		if err != nil {
			return nil, err
		}
		return &Outcome{
			Image:  final,
			Prompt: prompt,
			Model:  o.modelID(choice),
			Path:   PathDirectEdit,
			Stages: []Stage{{Name: "edit", Payload: final}},
		}, nil

	default:
		return o.editAndOutpaint(ctx, doc, prompt, payloads(packed.References), choice, PathOutpaint)
	}
}

// generateFresh handles the no-selection paths: entity-paired outpainting
// when the document carries named character and background images the
// prompt refers to, plain text-to-image otherwise.
func (o *Orchestrator) generateFresh(ctx context.Context, doc *document.Document, prompt string, choice ModelChoice) (*Outcome, error) {
	chars := doc.NamedImages(document.ClassCharacter)
	bgs := doc.NamedImages(document.ClassBackground)

	if len(chars) > 0 && len(bgs) > 0 {
		if outcome, ok := o.tryEntityPair(ctx, doc, prompt, chars, bgs, choice); ok {
			return outcome.result, outcome.err
		}
	}

	img, err := o.service.GenerateImage(ctx, prompt, doc.AspectRatio)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Image:  img,
		Prompt: prompt,
		Model:  gemini.ModelTextToImage,
		Path:   PathTextToImage,
		Stages: []Stage{{Name: "generate", Payload: img}},
	}, nil
}

type entityAttempt struct {
	result *Outcome
	err    error
}

// tryEntityPair resolves named entities out of the prompt. The second return
// is false when extraction failed or did not resolve both names, in which
// case the caller falls back to plain text-to-image.
func (o *Orchestrator) tryEntityPair(ctx context.Context, doc *document.Document, prompt string,
	chars, bgs []document.ImageObject, choice ModelChoice) (entityAttempt, bool) {

	match, err := o.service.ParseEntities(ctx, prompt, names(chars), names(bgs))
	if err != nil {
		o.logger.Debug("entity extraction failed, falling back to text-to-image", "error", err)
		return entityAttempt{}, false
	}
	if match.CharacterName == "" || match.BackgroundName == "" {
		return entityAttempt{}, false
	}

	char, ok := firstNamed(chars, match.CharacterName)
	if !ok {
		return entityAttempt{}, false
	}
	bg, ok := firstNamed(bgs, match.BackgroundName)
	if !ok {
		return entityAttempt{}, false
	}

	refs, err := refpack.PackImageObjects([]document.ImageObject{char, bg})
	if err != nil {
		return entityAttempt{result: nil, err: err}, true
	}

	outcome, err := o.editAndOutpaint(ctx, doc, prompt, refs, choice, PathEntityPair)
	return entityAttempt{result: outcome, err: err}, true
}

// editAndOutpaint is the two-step path: an initial composited edit, then a
// chroma-key pad to the target aspect ratio, then a second edit instructing
// the model to replace the padding.
func (o *Orchestrator) editAndOutpaint(ctx context.Context, doc *document.Document, prompt string,
	refs []raster.Payload, choice ModelChoice, path Path) (*Outcome, error) {

	initial, err := o.service.EditImage(ctx, gemini.EditRequest{
		Prompt:      prompt,
		Model:       o.modelID(choice),
		AspectRatio: doc.AspectRatio,
		References:  refs,
	})
	if err != nil {
		return nil, err
	}

	ratio, ok := document.AspectRatioValue(doc.AspectRatio)
	if !ok {
		return nil, fmt.Errorf("unknown aspect ratio %q", doc.AspectRatio)
	}
	padded, err := raster.PadToAspect(initial, ratio, raster.SizeCap)
	if err != nil {
		return nil, err
	}

	final, err := o.service.EditImage(ctx, gemini.EditRequest{
		Prompt:      outpaintPrompt,
		Model:       o.modelID(choice),
		AspectRatio: doc.AspectRatio,
		References:  []raster.Payload{padded},
	})
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Image:  final,
		Prompt: prompt,
		Model:  o.modelID(choice),
		Path:   path,
		Stages: []Stage{
			{Name: "edit", Payload: initial},
			{Name: "padded", Payload: padded},
			{Name: "outpaint", Payload: final},
		},
	}, nil
}

func payloads(refs []refpack.Reference) []raster.Payload {
	out := make([]raster.Payload, len(refs))
	for i, r := range refs {
		out[i] = r.Payload
	}
	return out
}

func names(objs []document.ImageObject) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name
	}
	return out
}

func firstNamed(objs []document.ImageObject, name string) (document.ImageObject, bool) {
	for _, o := range objs {
		if o.Name == name {
			return o, true
		}
	}
	return document.ImageObject{}, false
}
