package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"employee-directory/internal/apperr"
	"employee-directory/middleware/ratelimit/application"
	"employee-directory/middleware/ratelimit/domain"
	"employee-directory/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	// Pool sobrepõe o padrão NewSearchSlots(Max); o app passa o seu para o /health ler.
	Pool   domain.SlotPool
	Errors apperr.Responder
}

// ConcurrencyMiddleware limita buscas em voo. Max <= 0 desliga o limite.
// Sem vaga: 503 (Overloaded).
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 && opts.Pool == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Pool == nil {
		opts.Pool = infra.NewSearchSlots(opts.Max)
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				if errors.Is(err, context.Canceled) {
					// cliente já foi embora
					return
				}
				opts.Errors.Respond(w, r, err)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
