package application

import (
	"context"
	"errors"
	"time"

	"employee-directory/internal/apperr"
	"employee-directory/middleware/ratelimit/domain"
)

// ConcurrencyService limita quantas buscas rodam ao mesmo tempo no processo,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//   - Sem Pool: sempre passa (release no-op).
//   - AcquireTimeout <= 0: espera até o ctx da requisição encerrar.
//   - AcquireTimeout > 0: espera no máximo o timeout.
//
// Sem vaga retorna Overloaded; se foi o ctx do chamador que encerrou,
// retorna o próprio ctx.Err().
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if ok {
		return release, nil
	}
	if err := ctx.Err(); err != nil && !errors.Is(acqCtx.Err(), context.DeadlineExceeded) {
		return nil, err
	}
	return nil, apperr.Overloaded("too many concurrent searches, try again")
}
