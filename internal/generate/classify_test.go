package generate

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/promptboard/promptboard/internal/gemini"
)

func TestClassify_StructuredAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"503 overload", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, KindOverload},
		{"429 quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, KindQuota},
		{"400 client", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, KindClientPayload},
		{"401 credential", genai.APIError{Code: 401}, KindCredential},
		{"403 credential", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, KindCredential},
		{"500 transient", genai.APIError{Code: 500, Status: "INTERNAL"}, KindTransient},
		{"status only overload", genai.APIError{Status: "UNAVAILABLE"}, KindOverload},
		{"wrapped api error", fmt.Errorf("edit image: %w", genai.APIError{Code: 429}), KindQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_BlockedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("edit image: %w", &gemini.BlockedError{Reason: "IMAGE_SAFETY"})
	if got := Classify(err); got != KindSafety {
		t.Errorf("Classify(BlockedError) = %v, want KindSafety", got)
	}
	if KindSafety.Retryable() {
		t.Error("safety blocks must not be retryable")
	}
}

func TestClassify_EmbeddedJSONBlob(t *testing.T) {
	t.Parallel()

	err := errors.New(`call failed: {"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`)
	if got := Classify(err); got != KindQuota {
		t.Errorf("Classify(embedded blob) = %v, want KindQuota", got)
	}
}

func TestClassify_SubstringFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want ErrorKind
	}{
		{"the model is overloaded, try again later", KindOverload},
		{"quota exceeded for project", KindQuota},
		{"request payload size exceeds the limit", KindClientPayload},
		{"blocked due to safety settings", KindSafety},
		{"connection reset by peer", KindTransient},
		{"something unexpected", KindTransient},
	}

	for _, tt := range tests {
		if got := Classify(errors.New(tt.msg)); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestClassify_MissingKey(t *testing.T) {
	t.Parallel()

	if got := Classify(gemini.ErrMissingAPIKey); got != KindCredential {
		t.Errorf("Classify(ErrMissingAPIKey) = %v, want KindCredential", got)
	}
}

func TestErrorKind_Retryable(t *testing.T) {
	t.Parallel()

	retryable := []ErrorKind{KindOverload, KindQuota, KindTransient}
	terminal := []ErrorKind{KindSafety, KindClientPayload, KindCredential, KindFormat}

	for _, k := range retryable {
		if !k.Retryable() {
			t.Errorf("%v should be retryable", k)
		}
	}
	for _, k := range terminal {
		if k.Retryable() {
			t.Errorf("%v should be terminal", k)
		}
	}
}

func TestSanitizeDetail_ElidesPayloads(t *testing.T) {
	t.Parallel()

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'A'
	}
	detail := "request failed with body data:image/png;base64," + string(long) + " end"

	got := SanitizeDetail(detail)
	if len(got) >= len(detail) {
		t.Error("payload not elided")
	}
	if !strings.Contains(got, "[payload elided]") {
		t.Errorf("sanitized detail missing marker: %q", got)
	}
}
