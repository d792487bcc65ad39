package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/interview-prep/internal/ai"
)

// ErrorMessage turns an analysis error into a short message for the user.
// Parse and schema failures are reported apart from provider failures.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ai.InputValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Please fill in: %s.", strings.ReplaceAll(strings.Join(validationErr.Fields, ", "), "_", " "))
	}

	var providerErr *ai.ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Kind {
		case ai.ProviderAuth:
			return "The Gemini API rejected the API key. Check GEMINI_API_KEY and try again."
		case ai.ProviderQuota:
			return "The Gemini API quota is exhausted. Wait a bit and try again."
		case ai.ProviderSafety:
			return "The model refused to answer because of its safety filters. Try rephrasing the inputs."
		case ai.ProviderNetwork:
			return "Could not reach the Gemini API. Check your connection and try again."
		default:
			return "The Gemini API failed to answer. Try again in a moment."
		}
	}

	if errors.Is(err, ai.ErrInvalidResponse) {
		return "The model answered in an unexpected format. Try again."
	}

	return err.Error()
}
