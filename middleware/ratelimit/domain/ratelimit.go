package domain

// Camada de domínio do rate limit (admission gate).
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica o tenant (org_id) cuja janela está sendo contada.
type Key string

// WindowStore é o admission gate: uma janela deslizante de timestamps por chave.
//
// Check precisa ser atômico por chave: descartar expirados, comparar com o
// limite e anexar o timestamp formam uma única seção crítica. Se a chamada
// retornar erro, nenhuma admissão aconteceu.
type WindowStore interface {
	Check(Key) (Decision, error)
	Limit() int
	Window() time.Duration
}

// WindowInspector expõe leitura do estado da janela (headers X-RateLimit-*).
type WindowInspector interface {
	Remaining(Key) int
	ResetAt(Key) time.Time
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear
	// (o tamanho da janela). Se 0, não há recomendação.
	RetryAfter time.Duration
	// Remaining é quantas admissões ainda cabem na janela após esta decisão.
	Remaining int
}
