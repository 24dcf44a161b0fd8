package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/apikit/internal/response"
)

// Recover turns a panic into a 500 error envelope.  http.ErrAbortHandler is
// re-raised so net/http can abort the connection as intended.  When the
// handler already wrote a status, the panic is only logged.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			zap.L().Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("request_id", RequestID(r.Context())),
				zap.ByteString("stack", debug.Stack()),
				zap.Bool("headers_sent", ww.Status() != 0),
			)
			if ww.Status() != 0 {
				return
			}
			response.Write(ww, response.Error(
				response.WithMessage("Internal server error"),
				response.WithStatus(http.StatusInternalServerError),
				response.WithCode(response.CodeInternal),
			))
		}()
		next.ServeHTTP(ww, r)
	})
}
