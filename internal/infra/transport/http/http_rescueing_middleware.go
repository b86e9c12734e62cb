package http

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/mkrupp/disastermap/internal/infra/logging"
)

// RescueingMiddleware turns a panicking handler into a 500 JSON answer and
// logs the panic with its stack. http.ErrAbortHandler is passed on so the
// server still drops the connection.
func RescueingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}

			if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(p)
			}

			log.ErrorContext(r.Context(), "handler panicked",
				logging.Group("http", "method", r.Method, "uri", r.RequestURI),
				logging.Group("panic", "value", p, "stack", string(debug.Stack())),
			)

			WriteError(w, http.StatusInternalServerError, "Internal error")
		}()

		next.ServeHTTP(w, r)
	})
}
