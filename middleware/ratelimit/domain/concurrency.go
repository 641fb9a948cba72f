package domain

import "context"

// SlotPool é o teto global de buscas em andamento, independente do tenant.
// Acquire devolve ok=false quando o ctx encerra antes de abrir vaga.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InFlight() int
	Capacity() int
}
