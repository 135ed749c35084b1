// Package apierror provides the error envelopes returned by the API. Every
// 4xx/5xx body goes through here so clients see one shape and internals
// (stack traces, SQL errors) never leak.
package apierror

// APIError is the canonical error envelope.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// Unavailable is returned when a report cannot be computed from the data
// (as opposed to a report that computes to zero).
type Unavailable struct {
	Detail string `json:"detail"`
	Reason string `json:"reason"`
}

func NewUnavailable(msg, reason string) *Unavailable {
	return &Unavailable{Detail: msg, Reason: reason}
}
