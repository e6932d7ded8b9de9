package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for provider operations.
var (
	// ErrRateLimit indicates the provider returned a rate limit response.
	ErrRateLimit = errors.New("provider rate limited")

	// ErrContextLength indicates the request exceeded the model's context window.
	ErrContextLength = errors.New("context length exceeded")

	// ErrProviderDown indicates the provider is temporarily unavailable.
	ErrProviderDown = errors.New("provider unavailable")

	// ErrAuthentication indicates the provider rejected the credentials.
	ErrAuthentication = errors.New("provider authentication failed")

	// ErrEmptyResponse indicates the provider answered without any reply text.
	ErrEmptyResponse = errors.New("provider returned no reply")
)

// maxErrorBodySize caps how much of an error response body is kept in errors.
const maxErrorBodySize = 4096

// StatusError maps an HTTP error status and body to a sentinel-wrapped error.
// Backends that talk plain HTTP use it so the gateway can classify failures.
func StatusError(status int, body []byte) error {
	if len(body) > maxErrorBodySize {
		body = body[:maxErrorBodySize]
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimit, body)
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", ErrProviderDown, status, body)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", ErrAuthentication, status, body)
	case status == http.StatusBadRequest && IsContextLengthMessage(string(body)):
		return fmt.Errorf("%w: %s", ErrContextLength, body)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, body)
	}
}

// IsContextLengthMessage reports whether an error message describes an
// exceeded context window.
func IsContextLengthMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "context_length_exceeded") ||
		strings.Contains(lower, "context length") ||
		strings.Contains(lower, "maximum context") ||
		strings.Contains(lower, "too many tokens") ||
		strings.Contains(lower, "token limit") ||
		strings.Contains(lower, "prompt is too long")
}

// Kind returns a short, stable label for err, used as a metrics dimension.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrContextLength):
		return "context_length"
	case errors.Is(err, ErrProviderDown):
		return "provider_down"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	default:
		return "inference"
	}
}
