package response

import (
	"maps"
	"net/http"
	"strconv"
)

// Default messages and codes.
const (
	DefaultSuccessMessage      = "Operation completed successfully"
	DefaultErrorMessage        = "An error occurred"
	DefaultValidationMessage   = "Validation failed"
	DefaultResource            = "Resource"
	DefaultUnauthorizedMessage = "Authentication required"
	DefaultForbiddenMessage    = "Insufficient permissions"

	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "RESOURCE_NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

type settings struct {
	message  string
	status   int
	metadata map[string]any
	code     string
	details  Details
}

// Option tunes Success or Error.  Options that do not apply to a variant
// are ignored (e.g. WithMetadata on Error).
type Option func(*settings)

func WithMessage(msg string) Option { return func(s *settings) { s.message = msg } }

func WithStatus(code int) Option { return func(s *settings) { s.status = code } }

// WithMetadata sets the metadata block.  The map is shallow-copied.
func WithMetadata(md map[string]any) Option {
	return func(s *settings) { s.metadata = maps.Clone(md) }
}

// WithCode overrides the machine-readable error code.
func WithCode(code string) Option { return func(s *settings) { s.code = code } }

func WithDetails(d Details) Option { return func(s *settings) { s.details = d } }

// WithErrors is WithDetails for a plain message list.
func WithErrors(msgs ...string) Option {
	return func(s *settings) { s.details = NewListDetails(msgs...) }
}

// Success builds a success response carrying data.
func Success[T any](data T, opts ...Option) Response[T] {
	s := settings{message: DefaultSuccessMessage, status: http.StatusOK}
	for _, o := range opts {
		o(&s)
	}
	if s.metadata == nil {
		s.metadata = map[string]any{}
	}
	return Response[T]{
		Status: s.status,
		Body: Envelope[T]{
			Success:  true,
			Message:  s.message,
			Data:     data,
			Metadata: s.metadata,
		},
	}
}

// Error builds a failure response.  The code defaults to ERROR_<status>.
func Error(opts ...Option) Response[any] {
	s := settings{message: DefaultErrorMessage, status: http.StatusBadRequest}
	for _, o := range opts {
		o(&s)
	}
	code := s.code
	if code == "" {
		code = "ERROR_" + strconv.Itoa(s.status)
	}
	return Response[any]{
		Status: s.status,
		Body: Envelope[any]{
			Success:  false,
			Message:  s.message,
			Data:     nil,
			Error:    &ErrorBody{Code: code, Details: s.details},
			Metadata: map[string]any{},
		},
	}
}

// ValidationError reports per-field failures with status 422.  An empty
// message selects the default.
func ValidationError(fieldErrors map[string][]string, message string) Response[any] {
	if message == "" {
		message = DefaultValidationMessage
	}
	return Error(
		WithMessage(message),
		WithDetails(NewFieldDetails(fieldErrors)),
		WithStatus(http.StatusUnprocessableEntity),
		WithCode(CodeValidation),
	)
}

// NotFound reports a missing resource with status 404.  The identifier is
// appended to the message only when non-empty.
func NotFound(resource, identifier string) Response[any] {
	if resource == "" {
		resource = DefaultResource
	}
	msg := resource + " not found"
	if identifier != "" {
		msg += " with identifier: " + identifier
	}
	return Error(
		WithMessage(msg),
		WithStatus(http.StatusNotFound),
		WithCode(CodeNotFound),
	)
}

// Unauthorized reports missing authentication with status 401.
func Unauthorized(message string) Response[any] {
	if message == "" {
		message = DefaultUnauthorizedMessage
	}
	return Error(
		WithMessage(message),
		WithStatus(http.StatusUnauthorized),
		WithCode(CodeUnauthorized),
	)
}

// Forbidden reports insufficient permissions with status 403.
func Forbidden(message string) Response[any] {
	if message == "" {
		message = DefaultForbiddenMessage
	}
	return Error(
		WithMessage(message),
		WithStatus(http.StatusForbidden),
		WithCode(CodeForbidden),
	)
}
