package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Sentinel errors for the account services; handlers map them to gRPC codes.
// They are returned wrapped in *BusinessError and matched with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrUserExists          = errors.New("user already exists")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserLocked          = errors.New("user is blocked")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrWeakPassword        = errors.New("password does not meet policy")
	ErrUnauthenticated     = errors.New("user is not authenticated")
)

// FieldError is one (code, message) pair aggregated into a BusinessError.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BusinessError is a domain rule violation surfaced to the caller.
type BusinessError struct {
	Message string
	Errors  []FieldError
	TraceID string
	Err     error
}

func (e *BusinessError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Code + ": " + fe.Message
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *BusinessError) Unwrap() error { return e.Err }

// businessError builds a BusinessError stamped with the trace id of the span in ctx, if any.
func businessError(ctx context.Context, message string, err error, fields ...FieldError) *BusinessError {
	be := &BusinessError{Message: message, Errors: fields, Err: err}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		be.TraceID = sc.TraceID().String()
	}
	return be
}

// fieldErrorsFrom flattens err (possibly an errors.Join tree) into field errors.
func fieldErrorsFrom(code string, err error) []FieldError {
	if err == nil {
		return nil
	}
	var out []FieldError
	var ve *ValidationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, fieldErrorsFrom(code, e)...)
		}
		return out
	}
	if errors.As(err, &ve) {
		return []FieldError{{Code: ve.Field, Message: ve.Reason}}
	}
	return []FieldError{{Code: code, Message: err.Error()}}
}

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }
