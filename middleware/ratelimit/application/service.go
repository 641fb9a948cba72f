package application

import (
	"fmt"

	"employee-directory/internal/apperr"
	"employee-directory/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do admission gate.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// Falha interna do gate nunca vira admissão: volta como InternalUnexpected
// e o chamador responde 500.
type Service struct {
	Store domain.WindowStore
}

func (s Service) Decide(key domain.Key) (dec domain.Decision, err error) {
	if s.Store == nil {
		return domain.Decision{}, apperr.Internal("admission gate is not configured", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			dec = domain.Decision{}
			err = apperr.Internal("admission check failed", fmt.Errorf("panic: %v", r))
		}
	}()

	dec, err = s.Store.Check(key)
	if err != nil {
		return domain.Decision{}, apperr.Internal("admission check failed", err)
	}
	if !dec.Allowed && dec.RetryAfter <= 0 {
		dec.RetryAfter = s.Store.Window()
	}
	return dec, nil
}

// Admit é a forma "erro" de Decide: nil se admitido, RateLimited (com a
// janela como Retry-After) se rejeitado.
func (s Service) Admit(key domain.Key) error {
	dec, err := s.Decide(key)
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return apperr.RateLimited(s.Store.Limit(), dec.RetryAfter)
	}
	return nil
}
