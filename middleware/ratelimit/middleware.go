package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"employee-directory/internal/apperr"
	"employee-directory/middleware/ratelimit/application"
	"employee-directory/middleware/ratelimit/domain"
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Store domain.WindowStore
	Stats domain.StatsStore
	KeyFn KeyFunc
	// KeyParam/KeyHeader alimentam o DefaultKeyFunc quando KeyFn é nil.
	KeyParam  string
	KeyHeader string
	// ValidateKey roda ANTES do gate: chave rejeitada aqui não consome vaga,
	// então um org_id inválido não esgota a cota de um tenant real.
	ValidateKey         func(key string) error
	AddRateLimitHeaders bool
	Errors              apperr.Responder
}

// DefaultKeyFunc lê o tenant do query param (org_id) e, se vazio, do header.
func DefaultKeyFunc(param, header string) KeyFunc {
	return func(r *http.Request) string {
		if param != "" {
			if v := strings.TrimSpace(r.URL.Query().Get(param)); v != "" {
				return v
			}
		}
		if header != "" {
			if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
				return v
			}
		}
		return ""
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyParam == "" {
		opts.KeyParam = "org_id"
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyParam, opts.KeyHeader)
	}

	svc := application.Service{Store: opts.Store}
	inspector, _ := opts.Store.(domain.WindowInspector)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			if key == "" {
				opts.Errors.Respond(w, r, apperr.InvalidTenant(opts.KeyParam+" is required"))
				return
			}

			if opts.ValidateKey != nil {
				if err := opts.ValidateKey(key); err != nil {
					record(r, opts.Stats, domain.StatsEvent{Key: domain.Key(key), Reason: domain.ReasonInvalidTenant})
					opts.Errors.Respond(w, r, err)
					return
				}
			}

			dec, err := svc.Decide(domain.Key(key))
			if err != nil {
				opts.Errors.Respond(w, r, err)
				return
			}

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Limit", formatInt(opts.Store.Limit()))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				if inspector != nil {
					w.Header().Set("X-RateLimit-Reset", formatUnix(inspector.ResetAt(domain.Key(key))))
				}
			}

			ev := domain.StatsEvent{Key: domain.Key(key), Allowed: dec.Allowed}
			if !dec.Allowed {
				ev.Reason = domain.ReasonRateLimited
			}
			record(r, opts.Stats, ev)

			if !dec.Allowed {
				opts.Errors.Respond(w, r, apperr.RateLimited(opts.Store.Limit(), dec.RetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// record é best-effort: falha de estatística não derruba a request.
func record(r *http.Request, stats domain.StatsStore, ev domain.StatsEvent) {
	if stats == nil {
		return
	}
	ev.Method = r.Method
	ev.Path = r.URL.Path
	ev.At = time.Now()
	_ = stats.Record(r.Context(), ev)
}
