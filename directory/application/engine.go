// Package application contém o caso de uso de busca: valida o tenant e o
// pedido, monta o filtro, consulta o store e aplica a projeção por tenant.
package application

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"employee-directory/directory/domain"
	"employee-directory/internal/apperr"
)

type Engine struct {
	store          domain.RecordStore
	tenants        domain.TenantSet
	policy         domain.FieldResolver
	searchLocation bool
	log            *zap.Logger

	// aviso de política ausente: no máximo um por intervalo.
	fallbackWarn rate.Sometimes
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSearchLocation inclui location nos atributos do termo livre.
func WithSearchLocation(on bool) Option {
	return func(e *Engine) { e.searchLocation = on }
}

// WithFallbackWarnEvery muda o intervalo mínimo entre avisos de fallback.
func WithFallbackWarnEvery(d time.Duration) Option {
	return func(e *Engine) { e.fallbackWarn = rate.Sometimes{Interval: d} }
}

func NewEngine(store domain.RecordStore, tenants domain.TenantSet, policy domain.FieldResolver, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		tenants:      tenants,
		policy:       policy,
		log:          zap.NewNop(),
		fallbackWarn: rate.Sometimes{Interval: time.Minute},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search executa a busca de um tenant. Tenant desconhecido não chega ao store.
// Falha do store volta como BackendUnavailable, sem retry.
func (e *Engine) Search(ctx context.Context, req domain.SearchRequest) ([]domain.Projection, error) {
	if err := e.tenants.Validate(req.OrgID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if e.store == nil || e.policy == nil {
		return nil, apperr.Internal("search engine is not configured", nil)
	}

	rows, err := e.store.Scan(ctx, domain.NewFilter(req, e.searchLocation))
	if err != nil {
		return nil, apperr.BackendUnavailable("Database error occurred", err)
	}

	fields, configured := e.policy.Resolve(req.OrgID)
	if !configured {
		e.fallbackWarn.Do(func() {
			e.log.Warn("no field policy for tenant, using fallback fields",
				zap.String("org_id", req.OrgID),
				zap.Any("fields", fields),
			)
		})
	}

	out := make([]domain.Projection, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Project(row, fields))
	}
	return out, nil
}
