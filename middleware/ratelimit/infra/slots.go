package infra

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"employee-directory/middleware/ratelimit/domain"
)

// SearchSlots limita buscas simultâneas com um semaphore.Weighted.
// O contador inFlight existe só para o /health.
type SearchSlots struct {
	sem      *semaphore.Weighted
	capacity int
	inFlight atomic.Int64
}

var _ domain.SlotPool = (*SearchSlots)(nil)

func NewSearchSlots(capacity int) *SearchSlots {
	if capacity < 1 {
		capacity = 1
	}
	return &SearchSlots{sem: semaphore.NewWeighted(int64(capacity)), capacity: capacity}
}

func (s *SearchSlots) Acquire(ctx context.Context) (func(), bool) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, false
	}
	s.inFlight.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.inFlight.Add(-1)
			s.sem.Release(1)
		})
	}, true
}

func (s *SearchSlots) InFlight() int { return int(s.inFlight.Load()) }
func (s *SearchSlots) Capacity() int { return s.capacity }
