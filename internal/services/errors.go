package services

// Service-level error types mapped onto HTTP responses by the handlers.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// GenerationErrorKind classifies content-generation failures. The
// caller decides whether and when to retry; the client never retries
// internally.
type GenerationErrorKind string

const (
	// GenerationValidation: rejected before dispatch (blank topic).
	GenerationValidation GenerationErrorKind = "validation"
	// GenerationRateLimited: retryable after a cooldown.
	GenerationRateLimited GenerationErrorKind = "rate_limited"
	// GenerationQuotaExhausted: fatal for the session.
	GenerationQuotaExhausted GenerationErrorKind = "quota_exhausted"
	// GenerationMalformed: the service answered, but the payload failed
	// contract validation.
	GenerationMalformed GenerationErrorKind = "malformed"
	// GenerationTransport: network or 5xx; the user may retry manually.
	GenerationTransport GenerationErrorKind = "transport"
)

type GenerationError struct {
	Kind    GenerationErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }
