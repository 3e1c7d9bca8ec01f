package generate

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/promptboard/promptboard/internal/gemini"
)

// ErrorKind is the typed classification of a generation failure. The retry
// driver depends only on this enum, never on raw message text.
type ErrorKind int

const (
	// KindTransient is an unclassified failure, retried with a moderate
	// fixed backoff.
	KindTransient ErrorKind = iota

	// KindSafety is a content-safety or prohibited-content block. Terminal.
	KindSafety

	// KindClientPayload is a malformed or oversized request. Terminal.
	KindClientPayload

	// KindCredential means no accepted credential is available. Terminal,
	// and routed to credential entry rather than a generic error surface.
	KindCredential

	// KindOverload is a temporarily unavailable service, retried with a
	// short fast-growing backoff.
	KindOverload

	// KindQuota is a rate-limit or quota failure, retried with a longer
	// fixed backoff.
	KindQuota

	// KindFormat is a local format error (archives, payload decoding).
	// Terminal for the operation, never corrupts loaded state.
	KindFormat
)

// String returns the kind's wire name.
func (k ErrorKind) String() string {
	switch k {
	case KindSafety:
		return "safety"
	case KindClientPayload:
		return "client"
	case KindCredential:
		return "credential"
	case KindOverload:
		return "overload"
	case KindQuota:
		return "quota"
	case KindFormat:
		return "format"
	default:
		return "transient"
	}
}

// Retryable reports whether another attempt can change the outcome.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindOverload, KindQuota, KindTransient:
		return true
	default:
		return false
	}
}

// Classify maps a service-call failure onto an ErrorKind. Structured
// information is preferred: the adapter's BlockedError, then genai.APIError
// code/status, then a JSON error blob embedded in the message, then
// substring matching as the last resort.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindTransient
	}

	var blocked *gemini.BlockedError
	if errors.As(err, &blocked) {
		return KindSafety
	}
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return KindCredential
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Status)
	}

	if code, status, ok := extractEmbeddedStatus(err.Error()); ok {
		return classifyStatus(code, status)
	}

	return classifyMessage(err.Error())
}

func classifyStatus(code int, status string) ErrorKind {
	switch code {
	case 400:
		return KindClientPayload
	case 401, 403:
		return KindCredential
	case 429:
		return KindQuota
	case 503:
		return KindOverload
	}
	switch strings.ToUpper(status) {
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION":
		return KindClientPayload
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return KindCredential
	case "RESOURCE_EXHAUSTED":
		return KindQuota
	case "UNAVAILABLE":
		return KindOverload
	}
	return KindTransient
}

// embeddedErrorBlob finds a stringified {"error": {...}} JSON object inside
// an error message, which some provider failures arrive as.
var embeddedErrorBlob = regexp.MustCompile(`\{.*"error".*\}`)

func extractEmbeddedStatus(msg string) (code int, status string, ok bool) {
	blob := embeddedErrorBlob.FindString(msg)
	if blob == "" {
		return 0, "", false
	}
	var wrapper struct {
		Error struct {
			Code   int    `json:"code"`
			Status string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(blob), &wrapper) != nil {
		return 0, "", false
	}
	if wrapper.Error.Code == 0 && wrapper.Error.Status == "" {
		return 0, "", false
	}
	return wrapper.Error.Code, wrapper.Error.Status, true
}

func classifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "safety", "prohibited", "blocked"):
		return KindSafety
	case containsAny(lower, "quota", "rate limit", "429", "resource_exhausted", "resource exhausted"):
		return KindQuota
	case containsAny(lower, "503", "unavailable", "overload"):
		return KindOverload
	case containsAny(lower, "invalid argument", "payload size", "request too large", "400"):
		return KindClientPayload
	case containsAny(lower, "api key", "unauthenticated", "permission denied", "401", "403"):
		return KindCredential
	default:
		return KindTransient
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
