// Package recovery converte panics de handlers em InternalUnexpected (500),
// com o stack no log e nada de detalhe interno na resposta.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"employee-directory/internal/apperr"
)

func Middleware(errs apperr.Responder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if errs.Log != nil {
					errs.Log.Error("panic in handler",
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
				}
				errs.Respond(w, r, apperr.Internal("panic in handler", fmt.Errorf("%v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
