package infra

import (
	"context"

	"employee-directory/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	promNamespace = "directory"
	promSubsystem = "admission"
)

// PromStatsStore expõe as decisões do gate como métricas Prometheus.
//
// O label tenant só é preenchido com trackKeys e nunca para invalid_tenant
// (a chave veio do chamador e não foi validada).
type PromStatsStore struct {
	decisions *prometheus.CounterVec
	trackKeys bool
}

func NewPromStatsStore(reg prometheus.Registerer, trackKeys bool) *PromStatsStore {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "decisions_total",
		Help:      "Number of admission gate decisions by outcome",
	}, []string{"outcome", "tenant"})

	reg.MustRegister(decisions)

	return &PromStatsStore{decisions: decisions, trackKeys: trackKeys}
}

// RegisterWindowGauge publica quantos tenants têm janela alocada.
func RegisterWindowGauge(reg prometheus.Registerer, s *SlidingWindowStore) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystem,
		Name:      "tracked_tenants",
		Help:      "Number of tenants with a live sliding window",
	}, func() float64 { return float64(s.Len()) }))
}

func (s *PromStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := statsField(ev)
	tenant := ""
	if s.trackKeys && outcome != domain.ReasonInvalidTenant {
		tenant = string(ev.Key)
	}
	s.decisions.WithLabelValues(outcome, tenant).Inc()
	return nil
}
