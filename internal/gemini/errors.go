package gemini

import (
	"errors"

	"google.golang.org/genai"
)

// ErrMissingAPIKey indicates no credential was supplied.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrEmptyResponse indicates the service answered without any usable payload.
var ErrEmptyResponse = errors.New("empty response from service")

// BlockedError reports a content-safety or prohibited-content finish. It is
// terminal: the orchestrator must not retry it.
type BlockedError struct {
	// Reason is the service's finish or block reason string.
	Reason string
}

func (e *BlockedError) Error() string {
	return "generation blocked: " + e.Reason
}

// blockedFinishReasons are the finish reasons treated as safety blocks.
var blockedFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonImageSafety:       true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonSPII:              true,
}

// asAPIError unwraps a genai.APIError if err carries one.
func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return genai.APIError{}, false
}
