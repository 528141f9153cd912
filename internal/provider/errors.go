// internal/provider/errors.go
package provider

import "fmt"

// Kind is the fixed failure taxonomy for the acquisition pipeline.
// The Sdk kinds are internal fall-through signals and never reach the
// user; everything else maps to exactly one user-facing message.
type Kind int

const (
	KindNetwork Kind = iota
	KindTimeout
	KindAuth
	KindRateLimited
	KindServerUnavailable
	KindUnknownAPI
	KindSdkUnavailable
	KindSdkCallFailed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindServerUnavailable:
		return "server_unavailable"
	case KindUnknownAPI:
		return "unknown_api"
	case KindSdkUnavailable:
		return "sdk_unavailable"
	case KindSdkCallFailed:
		return "sdk_call_failed"
	default:
		return "unknown"
	}
}

// Retryable reports whether the pipeline may spend retry budget on
// this kind. Auth failures and malformed input never retry.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindRateLimited, KindServerUnavailable:
		return true
	default:
		return false
	}
}

// UserMessage returns the fixed message shown in the transcript when
// the pipeline gives up on this kind.
func (k Kind) UserMessage() string {
	switch k {
	case KindNetwork:
		return "Network error. Check your connection and try again."
	case KindTimeout:
		return "The request timed out. Please try again."
	case KindAuth:
		return "AI capability is not configured. Set an API key or start the local sidecar."
	case KindRateLimited:
		return "Rate limit exceeded, please wait a moment before retrying."
	case KindServerUnavailable:
		return "The AI service is temporarily unavailable. Try again shortly."
	default:
		return "Something went wrong talking to the AI service."
	}
}

// ClassifiedError is a typed failure from an adapter or the pipeline
type ClassifiedError struct {
	Kind    Kind
	Message string
	Status  int // HTTP status when one was received, else 0
	Cause   error
}

func (e *ClassifiedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// Classify builds a ClassifiedError without an HTTP status
func Classify(kind Kind, message string) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: message}
}
