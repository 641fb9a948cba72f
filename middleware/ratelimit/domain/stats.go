package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do admission gate.
//
// Reason diferencia rejeições: "rate_limited" ou "invalid_tenant" (esta
// última não consome vaga da janela, mas é contabilizada).
//
// Observação: cuidado com cardinalidade (ex.: salvar Key sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Key     Key
	Allowed bool
	Reason  string

	Method string
	Path   string

	At time.Time
}

const (
	ReasonRateLimited   = "rate_limited"
	ReasonInvalidTenant = "invalid_tenant"
)

// StatsStore é a estratégia de persistência para estatísticas do gate.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
