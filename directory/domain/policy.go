package domain

import (
	"fmt"
	"sort"
	"strings"

	"employee-directory/internal/apperr"
)

// DefaultFallback é o mínimo exposto a um tenant sem política configurada.
func DefaultFallback() []Field {
	return []Field{FieldFirstName, FieldLastName}
}

// FieldResolver resolve a lista de campos permitidos de um tenant.
// configured=false indica que a lista devolvida é o fallback.
type FieldResolver interface {
	Resolve(tenant string) (fields []Field, configured bool)
}

// FieldPolicy é o mapeamento estático tenant -> campos, montado uma vez no boot.
type FieldPolicy struct {
	byTenant map[string][]Field
	fallback []Field
	source   string
}

// NewFieldPolicy valida os nomes. Tenant com lista vazia conta como não
// configurado (cai no fallback) para que uma omissão não vire vazamento.
func NewFieldPolicy(byTenant map[string][]string, fallback []string) (FieldPolicy, error) {
	fb := DefaultFallback()
	if len(fallback) > 0 {
		parsed, err := ParseFields(fallback)
		if err != nil {
			return FieldPolicy{}, fmt.Errorf("fallback fields: %w", err)
		}
		fb = parsed
	}

	p := FieldPolicy{byTenant: make(map[string][]Field, len(byTenant)), fallback: fb, source: "config"}
	for tenant, names := range byTenant {
		tenant = strings.TrimSpace(tenant)
		if tenant == "" {
			return FieldPolicy{}, fmt.Errorf("field policy: empty tenant key")
		}
		fields, err := ParseFields(names)
		if err != nil {
			return FieldPolicy{}, fmt.Errorf("fields for tenant %q: %w", tenant, err)
		}
		if len(fields) == 0 {
			continue
		}
		p.byTenant[tenant] = fields
	}
	return p, nil
}

// WithSource marca de onde a política veio (config, file, casbin); só para log.
func (p FieldPolicy) WithSource(source string) FieldPolicy {
	p.source = source
	return p
}

func (p FieldPolicy) Source() string { return p.source }

func (p FieldPolicy) Resolve(tenant string) ([]Field, bool) {
	if fields, ok := p.byTenant[tenant]; ok {
		return fields, true
	}
	fb := p.fallback
	if len(fb) == 0 {
		fb = DefaultFallback()
	}
	return fb, false
}

// Tenants lista os tenants com política própria, ordenados.
func (p FieldPolicy) Tenants() []string {
	out := make([]string, 0, len(p.byTenant))
	for t := range p.byTenant {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TenantSet é o conjunto de organizações reconhecidas.
type TenantSet struct {
	keys map[string]struct{}
}

func NewTenantSet(keys ...string) TenantSet {
	s := TenantSet{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		s.keys[k] = struct{}{}
	}
	return s
}

func (s TenantSet) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Validate devolve InvalidTenant para chave vazia ou desconhecida.
func (s TenantSet) Validate(key string) error {
	if key == "" {
		return apperr.InvalidTenant("org_id is required")
	}
	if !s.Contains(key) {
		return apperr.InvalidTenant("Invalid organization ID")
	}
	return nil
}

func (s TenantSet) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s TenantSet) Len() int { return len(s.keys) }
