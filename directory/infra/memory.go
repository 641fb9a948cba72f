package infra

import (
	"context"
	"errors"
	"sort"
	"sync"

	"employee-directory/directory/domain"
)

var ErrClosed = errors.New("store is closed")

// MemoryStore guarda os registros num map protegido por RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[string]domain.Employee
	closed bool
}

func NewMemoryStore(rows ...domain.Employee) *MemoryStore {
	s := &MemoryStore{rows: make(map[string]domain.Employee, len(rows))}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *MemoryStore) Scan(ctx context.Context, f domain.Filter) ([]domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	matched := make([]domain.Employee, 0)
	for _, r := range s.rows {
		if f.Match(r) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return page(matched, f.Offset, f.Limit), nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.rows), nil
}

func (s *MemoryStore) Insert(ctx context.Context, rows ...domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, r := range rows {
		if r.ID == "" {
			return errors.New("insert: employee id is required")
		}
		s.rows[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func page(rows []domain.Employee, offset, limit int) []domain.Employee {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []domain.Employee{}
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}
