package cli

import (
	"strings"

	"github.com/ukcompliance/complianceengine/internal/llm"
)

// Exit codes for different error categories. ExitCodeSuccess and
// ExitCodeGenericError are the two a document-validation failure never
// produces: a fail finding is a successful run with a non-zero risk
// result, not a process error.
const (
	ExitCodeSuccess        = 0
	ExitCodeGenericError   = 1
	ExitCodeAuthError      = 2
	ExitCodeRateLimitError = 3
	ExitCodeInvalidRequest = 4
	ExitCodeServerError    = 5
	ExitCodeNetworkError   = 6
	ExitCodeInputError     = 7
	ExitCodeContentFiltered = 8
	ExitCodeCancelled      = 10
	ExitCodeHighRisk       = 11
)

// exitCodeFromError maps a returned error to a process exit code,
// preferring the LLM category an adapter client attached, falling back
// to a generic failure.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if catErr, ok := llm.IsCategorizedError(err); ok {
		switch catErr.Category() {
		case llm.CategoryAuth:
			return ExitCodeAuthError
		case llm.CategoryRateLimit:
			return ExitCodeRateLimitError
		case llm.CategoryInvalidRequest:
			return ExitCodeInvalidRequest
		case llm.CategoryServer:
			return ExitCodeServerError
		case llm.CategoryNetwork:
			return ExitCodeNetworkError
		case llm.CategoryInputLimit:
			return ExitCodeInputError
		case llm.CategoryContentFiltered:
			return ExitCodeContentFiltered
		case llm.CategoryCancelled:
			return ExitCodeCancelled
		}
	}
	return ExitCodeGenericError
}

// friendlyMessage produces a short, actionable message for an error that
// otherwise carries no user-facing text of its own.
func friendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "api key"), strings.Contains(lower, "unauthorized"):
		return "Authentication error: check your provider API key."
	case strings.Contains(lower, "rate limit"):
		return "Rate limit exceeded: try again later or lower the configured request rate."
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return "Operation timed out before the configured deadline."
	case strings.Contains(lower, "not found"):
		return "Resource not found: check the input path and module IDs."
	default:
		return msg
	}
}
