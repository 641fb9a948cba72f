package infra

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"employee-directory/middleware/ratelimit/domain"

	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/time/rate"
)

var ErrEmptyKey = errors.New("ratelimit: empty tenant key")

// SlidingWindowStore é o admission gate: uma janela deslizante de timestamps
// por chave, com lock por shard (chaves de shards diferentes não disputam o
// mesmo mutex) e limpeza periódica.
//
// Invariantes por chave: timestamps em ordem não decrescente, todos com
// now-t <= window, e nunca mais que limit entradas.
type SlidingWindowStore struct {
	limit        int
	window       time.Duration
	maxEntries   int
	cleanupEvery time.Duration
	clock        clock.Clock

	shards  []*shard
	entries atomic.Int64

	// sweep oportunista quando passa do high-water mark, no máximo 1x por intervalo
	sweepGate *rate.Sometimes
	onSweep   func(removed int)
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	ts []time.Time // mais antigo primeiro
}

type StoreOption func(*SlidingWindowStore)

func WithClock(c clock.Clock) StoreOption {
	return func(s *SlidingWindowStore) { s.clock = c }
}

// WithMaxEntries define o high-water mark de tenants que dispara sweep oportunista.
func WithMaxEntries(n int) StoreOption {
	return func(s *SlidingWindowStore) { s.maxEntries = n }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *SlidingWindowStore) { s.cleanupEvery = d }
}

func WithShards(n int) StoreOption {
	return func(s *SlidingWindowStore) {
		if n > 0 {
			s.shards = newShards(n)
		}
	}
}

// WithSweepHook é chamado ao fim de cada Sweep com o número de tenants removidos.
func WithSweepHook(fn func(removed int)) StoreOption {
	return func(s *SlidingWindowStore) { s.onSweep = fn }
}

// NewSlidingWindowStore cria o gate com `limit` admissões por `window`.
// Valores não positivos caem nos padrões (20 por 60s).
func NewSlidingWindowStore(limit int, window time.Duration, opts ...StoreOption) *SlidingWindowStore {
	if limit <= 0 {
		limit = 20
	}
	if window <= 0 {
		window = 60 * time.Second
	}
	s := &SlidingWindowStore{
		limit:        limit,
		window:       window,
		maxEntries:   10000,
		cleanupEvery: time.Minute,
		clock:        clock.New(),
		shards:       newShards(32),
		sweepGate:    &rate.Sometimes{Interval: time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*shard {
	out := make([]*shard, n)
	for i := range out {
		out[i] = &shard{windows: make(map[string]*window)}
	}
	return out
}

func (s *SlidingWindowStore) Limit() int                  { return s.limit }
func (s *SlidingWindowStore) Window() time.Duration       { return s.window }
func (s *SlidingWindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Len retorna quantos tenants têm janela alocada.
func (s *SlidingWindowStore) Len() int { return int(s.entries.Load()) }

func (s *SlidingWindowStore) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// evict descarta timestamps com now-t > window. Retorna o "now" efetivo:
// nunca anterior ao último timestamp, para manter a ordem.
func (w *window) evict(now time.Time, d time.Duration) time.Time {
	i := 0
	for i < len(w.ts) && now.Sub(w.ts[i]) > d {
		i++
	}
	if i > 0 {
		w.ts = append(w.ts[:0], w.ts[i:]...)
	}
	if n := len(w.ts); n > 0 && now.Before(w.ts[n-1]) {
		return w.ts[n-1]
	}
	return now
}

// Check implementa domain.WindowStore.
func (s *SlidingWindowStore) Check(key domain.Key) (domain.Decision, error) {
	k := string(key)
	if k == "" {
		return domain.Decision{}, ErrEmptyKey
	}

	dec := s.admit(k)

	// fora do lock do shard: Sweep trava todos os shards
	if dec.Allowed && s.maxEntries > 0 && s.Len() > s.maxEntries {
		s.sweepGate.Do(func() { s.Sweep() })
	}
	return dec, nil
}

// admit é a seção crítica de Check: descarta expirados, compara e anexa.
// O relógio é lido sob o lock para que os timestamps entrem na ordem em que
// o lock foi obtido.
func (s *SlidingWindowStore) admit(k string) domain.Decision {
	sh := s.shardFor(k)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.windows[k]
	if !ok {
		w = &window{ts: make([]time.Time, 0, s.limit)}
		sh.windows[k] = w
		s.entries.Add(1)
	}
	now := w.evict(s.clock.Now(), s.window)

	if len(w.ts) >= s.limit {
		return domain.Decision{Allowed: false, RetryAfter: s.window}
	}
	w.ts = append(w.ts, now)
	return domain.Decision{Allowed: true, Remaining: s.limit - len(w.ts)}
}

// Remaining implementa domain.WindowInspector. Janela vazia é removida aqui
// mesmo (GC preguiçoso).
func (s *SlidingWindowStore) Remaining(key domain.Key) int {
	k := string(key)
	if k == "" {
		return 0
	}
	sh := s.shardFor(k)
	now := s.clock.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.windows[k]
	if !ok {
		return s.limit
	}
	w.evict(now, s.window)
	if len(w.ts) == 0 {
		delete(sh.windows, k)
		s.entries.Add(-1)
		return s.limit
	}
	return max(0, s.limit-len(w.ts))
}

// ResetAt retorna quando o timestamp mais antigo sai da janela
// (ou agora, se a janela está vazia).
func (s *SlidingWindowStore) ResetAt(key domain.Key) time.Time {
	k := string(key)
	now := s.clock.Now()
	if k == "" {
		return now
	}
	sh := s.shardFor(k)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.windows[k]
	if !ok {
		return now
	}
	w.evict(now, s.window)
	if len(w.ts) == 0 {
		return now
	}
	return w.ts[0].Add(s.window)
}

// Sweep descarta timestamps expirados de todos os tenants e remove os que
// ficaram vazios. Um shard por vez; Check em outros shards segue livre.
func (s *SlidingWindowStore) Sweep() int {
	now := s.clock.Now()
	removed := 0

	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, w := range sh.windows {
			w.evict(now, s.window)
			if len(w.ts) == 0 {
				delete(sh.windows, k)
				s.entries.Add(-1)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	if s.onSweep != nil {
		s.onSweep(removed)
	}
	return removed
}

// Reset limpa a janela de um tenant. Uso em testes.
func (s *SlidingWindowStore) Reset(key domain.Key) {
	k := string(key)
	sh := s.shardFor(k)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.windows[k]; ok {
		delete(sh.windows, k)
		s.entries.Add(-1)
	}
}

// ResetAll limpa todas as janelas. Uso em testes.
func (s *SlidingWindowStore) ResetAll() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		s.entries.Add(-int64(len(sh.windows)))
		sh.windows = make(map[string]*window)
		sh.mu.Unlock()
	}
}

// StartJanitor inicia uma goroutine que roda Sweep periodicamente.
// Pare cancelando o contexto.
func (s *SlidingWindowStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := s.clock.Ticker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}
