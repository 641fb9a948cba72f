package infra

import (
	"context"
	"sync"

	"employee-directory/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed       int64 `json:"allowed"`
	RateLimited   int64 `json:"rate_limited"`
	InvalidTenant int64 `json:"invalid_tenant"`
}

func (c *Counters) add(ev domain.StatsEvent) {
	switch {
	case ev.Allowed:
		c.Allowed++
	case ev.Reason == domain.ReasonInvalidTenant:
		c.InvalidTenant++
	default:
		c.RateLimited++
	}
}

// MemoryStatsStore guarda contadores em memória (total e, opcionalmente, por
// tenant). Útil para testes e para o endpoint /admission/stats em dev.
//
// Não faz expiração: com trackKeys ligado, a cardinalidade é a dos tenants vistos.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byTenant map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{byTenant: make(map[string]Counters)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)
	if s.trackKeys && ev.Key != "" {
		c := s.byTenant[string(ev.Key)]
		c.add(ev)
		s.byTenant[string(ev.Key)] = c
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByTenant() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byTenant))
	for k, v := range s.byTenant {
		out[k] = v
	}
	return out
}
