// Package generators wraps the two external content generators (narrative
// text via Anthropic, images via OpenAI) behind fallible, rate-limited
// interfaces, and classifies their failures into the categories the rest of
// the system acts on. Nothing here retries: each call is billed, so failures
// are classified and surfaced, never absorbed.
package generators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

// Category classifies an external generator failure.
type Category string

const (
	CategoryQuotaExceeded Category = "quota_exceeded"
	CategoryBillingLimit  Category = "billing_limit_reached"
	CategoryRateLimited   Category = "rate_limited"
	CategoryAuth          Category = "authentication_failed"
	CategoryUnknown       Category = "external_error"
)

// Error is a classified external generator failure.
type Error struct {
	Category   Category
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Category))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// newError builds a classified error.
func newError(category Category, message string, statusCode int, cause error) *Error {
	return &Error{
		Category:   category,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// Classify categorizes a raw SDK error into a structured Error. It inspects
// the typed errors both SDKs expose first and falls back to message
// matching, since providers change their error surfaces more often than
// their wording.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr
	}

	statusCode := 0
	errStr := err.Error()
	lower := strings.ToLower(errStr)

	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		statusCode = openaiErr.HTTPStatusCode
		switch {
		case openaiErr.Type == "insufficient_quota" || strings.Contains(lower, "insufficient_quota"):
			return newError(CategoryQuotaExceeded, "generation quota exceeded", statusCode, err)
		case strings.Contains(lower, "billing") || strings.Contains(lower, "hard limit"):
			return newError(CategoryBillingLimit, "billing limit reached", statusCode, err)
		case openaiErr.HTTPStatusCode == 429:
			return newError(CategoryRateLimited, "rate limited", statusCode, err)
		case openaiErr.HTTPStatusCode == 401:
			return newError(CategoryAuth, "authentication failed", statusCode, err)
		}
	}

	var anthropicErr *anthropic.APIError
	if errors.As(err, &anthropicErr) {
		switch {
		case anthropicErr.IsRateLimitErr():
			return newError(CategoryRateLimited, "rate limited", 429, err)
		case anthropicErr.IsAuthenticationErr():
			return newError(CategoryAuth, "authentication failed", 401, err)
		case strings.Contains(lower, "credit balance") || strings.Contains(lower, "billing"):
			return newError(CategoryBillingLimit, "billing limit reached", 400, err)
		}
	}

	// Fallback classification on message content.
	switch {
	case strings.Contains(lower, "insufficient_quota") || strings.Contains(lower, "quota"):
		return newError(CategoryQuotaExceeded, "generation quota exceeded", statusCode, err)
	case strings.Contains(lower, "billing") || strings.Contains(lower, "credit balance"):
		return newError(CategoryBillingLimit, "billing limit reached", statusCode, err)
	case strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit"):
		return newError(CategoryRateLimited, "rate limited", statusCode, err)
	case strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "invalid x-api-key"):
		return newError(CategoryAuth, "authentication failed", statusCode, err)
	}

	return newError(CategoryUnknown, "generator call failed", statusCode, err)
}

// CategoryOf extracts the Category from an error, defaulting to unknown.
func CategoryOf(err error) Category {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Category
	}
	return CategoryUnknown
}
