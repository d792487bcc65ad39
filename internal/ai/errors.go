package ai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput matches InputValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProvider matches ProviderError.
	ErrProvider = errors.New("provider error")
	// ErrInvalidResponse matches both ParseError and SchemaError.
	ErrInvalidResponse = errors.New("invalid model response")
)

// InputValidationError reports required request fields that are missing or malformed.
type InputValidationError struct {
	Fields []string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Fields, ", "))
}

func (e *InputValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ProviderErrorKind classifies generation failures so callers can decide
// whether to retry the call or stop.
type ProviderErrorKind string

const (
	ProviderAuth    ProviderErrorKind = "auth"
	ProviderQuota   ProviderErrorKind = "quota"
	ProviderNetwork ProviderErrorKind = "network"
	ProviderSafety  ProviderErrorKind = "safety"
	ProviderServer  ProviderErrorKind = "server"
	ProviderEmpty   ProviderErrorKind = "empty"
	ProviderUnknown ProviderErrorKind = "unknown"
)

// ProviderError means the generation call itself failed.
type ProviderError struct {
	Kind      ProviderErrorKind
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider error (%s)", e.Kind)
	}
	return fmt.Sprintf("provider error (%s): %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ParseError means the provider answered but the payload is not a JSON object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidResponse }

// SchemaError means the payload parsed but does not satisfy the result schema.
type SchemaError struct {
	Raw      string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model response violates schema: %s", strings.Join(e.Problems, "; "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidResponse }

// RawPayload returns the model output attached to a parse or schema error.
func RawPayload(err error) (string, bool) {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Raw, true
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Raw, true
	}

	return "", false
}
