package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a workflow failure. Every stage reports exactly one kind
// and the orchestrator propagates it unchanged.
type ErrorKind string

const (
	KindUpstreamUnavailable   ErrorKind = "UpstreamUnavailable"
	KindIngestionRejected     ErrorKind = "IngestionRejected"
	KindMediaProcessingFailed ErrorKind = "MediaProcessingFailed"
	KindProcessingTimeout     ErrorKind = "ProcessingTimeout"
	KindGenerationRejected    ErrorKind = "GenerationRejected"
	KindMalformedResponse     ErrorKind = "MalformedResponse"
	KindTranslationFailed     ErrorKind = "TranslationFailed"
	KindUnknown               ErrorKind = "Unknown"
)

// Error is a classified workflow failure. Message is safe to show to users;
// Err keeps the full cause chain for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error of the same kind, so callers can compare against
// a bare &Error{Kind: ...}.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || other == nil || e == nil {
		return false
	}
	return other.Kind == e.Kind
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) && classified != nil {
		return classified.Kind
	}
	return KindUnknown
}

// UserMessage returns the message to surface for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) && classified != nil && strings.TrimSpace(classified.Message) != "" {
		return classified.Message
	}
	return err.Error()
}

// ProviderError is a non-success response from the provider API.
type ProviderError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("provider returned %d %s: %v", e.StatusCode, e.Status, e.Err)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsClientError reports whether the provider refused the request itself
// rather than failing to serve it.
func (e *ProviderError) IsClientError() bool {
	return e != nil && e.StatusCode >= 400 && e.StatusCode < 500
}

// AsProviderError extracts a *ProviderError from err's chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) && providerErr != nil {
		return providerErr, true
	}
	return nil, false
}
