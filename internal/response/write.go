package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/yanizio/apikit/internal/apperr"
	"github.com/yanizio/apikit/internal/metrics"
)

// CodeInternal marks unclassified failures.  The message never leaks the
// underlying error.
const (
	CodeInternal    = "INTERNAL_ERROR"
	CodeConflict    = "CONFLICT"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	internalMessage = "Internal server error"
)

// Write encodes resp as JSON.  A 204 carries headers only because HTTP
// forbids a body on No Content.
func Write[T any](w http.ResponseWriter, resp Response[T]) {
	code := ""
	if resp.Body.Error != nil {
		code = resp.Body.Error.Code
	}
	metrics.ResponsesTotal.WithLabelValues(strconv.Itoa(resp.Status), code).Inc()

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == http.StatusNoContent {
		w.WriteHeader(resp.Status)
		zap.L().Debug("envelope body dropped on 204",
			zap.String("message", resp.Body.Message))
		return
	}
	w.WriteHeader(resp.Status)
	if err := json.NewEncoder(w).Encode(resp.Body); err != nil {
		zap.L().Error("encode envelope", zap.Error(err))
	}
}

// FromError converts a classified error into the matching failure variant.
// Errors without a classification become a 500.
func FromError(err error) Response[any] {
	e, ok := apperr.As(err)
	if !ok {
		zap.L().Error("unclassified error", zap.Error(err))
		return Error(
			WithMessage(internalMessage),
			WithStatus(http.StatusInternalServerError),
			WithCode(CodeInternal),
		)
	}

	switch e.Kind {
	case apperr.KindValidation:
		return ValidationError(e.Fields, e.Message)
	case apperr.KindNotFound:
		return NotFound(e.Resource, e.Identifier)
	case apperr.KindUnauthorized:
		return Unauthorized(e.Message)
	case apperr.KindForbidden:
		return Forbidden(e.Message)
	case apperr.KindConflict:
		return Error(
			WithMessage(e.Message),
			WithStatus(http.StatusConflict),
			WithCode(CodeConflict),
		)
	case apperr.KindUnavailable:
		return Error(
			WithMessage(e.Message),
			WithStatus(http.StatusServiceUnavailable),
			WithCode(CodeUnavailable),
		)
	case apperr.KindInvalid:
		return Error(WithMessage(e.Message))
	default:
		zap.L().Error("internal error", zap.Error(err))
		return Error(
			WithMessage(internalMessage),
			WithStatus(http.StatusInternalServerError),
			WithCode(CodeInternal),
		)
	}
}

// WriteError is Write(w, FromError(err)).
func WriteError(w http.ResponseWriter, err error) {
	Write(w, FromError(err))
}
