package generate

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrGenerationInFlight indicates a concurrent submission while another
// generation sequence is active.
var ErrGenerationInFlight = errors.New("a generation is already in flight")

// ErrEmptyPrompt indicates a submission without a prompt.
var ErrEmptyPrompt = errors.New("empty prompt")

// GenerationError is the orchestrator's terminal failure surface. Message is
// user-facing; Detail retains sanitized technical diagnostics separately so
// a user can inspect them without cluttering the primary error.
type GenerationError struct {
	Kind     ErrorKind
	Message  string
	Detail   string
	Attempts int
	cause    error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.cause
}

// newGenerationError builds the terminal error for a classified failure.
func newGenerationError(kind ErrorKind, attempts int, cause error) *GenerationError {
	ge := &GenerationError{
		Kind:     kind,
		Attempts: attempts,
		cause:    cause,
	}
	if cause != nil {
		ge.Detail = SanitizeDetail(cause.Error())
	}

	switch kind {
	case KindSafety:
		ge.Message = "The request was blocked by the content safety system. Adjust the prompt or references and try again."
	case KindClientPayload:
		ge.Message = "The service rejected the request. Try smaller reference images or a simpler prompt."
	case KindCredential:
		ge.Message = "No accepted API key is configured."
	case KindQuota:
		ge.Message = fmt.Sprintf("Quota or rate limit exhausted after %d attempts. Wait a while before retrying.", attempts)
	default:
		ge.Message = fmt.Sprintf("Generation failed after %d attempts. See diagnostic details.", attempts)
	}
	return ge
}

// base64Run matches long base64 stretches (inline image payloads) so
// diagnostics never carry megabytes of pixels.
var base64Run = regexp.MustCompile(`[A-Za-z0-9+/=]{256,}`)

// SanitizeDetail strips embedded image payloads out of a diagnostic string.
func SanitizeDetail(detail string) string {
	return base64Run.ReplaceAllString(detail, "[payload elided]")
}
