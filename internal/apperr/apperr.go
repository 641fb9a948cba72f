// Package apperr define a taxonomia de erros visíveis ao chamador e a tradução
// para status HTTP / envelope JSON.
//
// Regra: a causa interna (Err) vai para o log, nunca para o corpo da resposta.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidTenant
	KindInvalidArgument
	KindRateLimited
	KindBackendUnavailable
	// KindOverloaded é a rejeição do limite de concorrência (não vem do core).
	KindOverloaded
)

func (k Kind) String() string {
	switch k {
	case KindInvalidTenant:
		return "INVALID_TENANT"
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindRateLimited:
		return "RATE_LIMITED"
	case KindBackendUnavailable:
		return "BACKEND_UNAVAILABLE"
	case KindOverloaded:
		return "OVERLOADED"
	default:
		return "INTERNAL_UNEXPECTED"
	}
}

// HTTPStatus traduz o tipo de erro para o status HTTP correspondente.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidTenant, KindInvalidArgument:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindOverloaded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	// RetryAfter só faz sentido para KindRateLimited (tamanho da janela).
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidTenant(msg string) *Error {
	return &Error{Kind: KindInvalidTenant, Message: msg}
}

func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func RateLimited(limit int, window time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %d seconds.", limit, int(window.Seconds())),
		RetryAfter: window,
	}
}

func BackendUnavailable(msg string, err error) *Error {
	return &Error{Kind: KindBackendUnavailable, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

func Overloaded(msg string) *Error {
	return &Error{Kind: KindOverloaded, Message: msg}
}

// As extrai o *Error da cadeia; erros desconhecidos viram KindInternal
// com mensagem genérica.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("an unexpected error occurred", err)
}

func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	return As(err).Kind
}

func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
