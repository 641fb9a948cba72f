package infra

import (
	"fmt"
	"os"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"gopkg.in/yaml.v3"

	"employee-directory/directory/domain"
)

// policyFile é o formato YAML da política de campos:
//
//	fallback: [first_name, last_name]
//	tenants:
//	  org1: [first_name, last_name, department]
type policyFile struct {
	Fallback []string            `yaml:"fallback"`
	Tenants  map[string][]string `yaml:"tenants"`
}

// LoadFieldPolicyFile lê a política de um arquivo YAML. O fallback do arquivo,
// se presente, tem precedência sobre o passado.
func LoadFieldPolicyFile(path string, fallback []string) (domain.FieldPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.FieldPolicy{}, fmt.Errorf("read field policy: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return domain.FieldPolicy{}, fmt.Errorf("parse field policy %q: %w", path, err)
	}
	if len(pf.Fallback) > 0 {
		fallback = pf.Fallback
	}
	p, err := domain.NewFieldPolicy(pf.Tenants, fallback)
	if err != nil {
		return domain.FieldPolicy{}, fmt.Errorf("field policy %q: %w", path, err)
	}
	return p.WithSource("file"), nil
}

// CasbinObject é o objeto casbin de um campo: employee.<campo>.
func CasbinObject(f domain.Field) string { return "employee." + string(f) }

const casbinAction = "read"

// LoadCasbinFieldPolicy resolve, uma vez, enforce(tenant, employee.<campo>, read)
// para cada tenant e campo canônico. Tenant sem nenhum campo permitido fica
// sem política (cai no fallback).
func LoadCasbinFieldPolicy(modelPath, policyPath string, tenants []string, fallback []string) (domain.FieldPolicy, error) {
	enforcer, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return domain.FieldPolicy{}, fmt.Errorf("casbin model: %w", err)
	}
	enforcer.SetAdapter(fileadapter.NewAdapter(policyPath))
	if err := enforcer.LoadPolicy(); err != nil {
		return domain.FieldPolicy{}, fmt.Errorf("casbin policy: %w", err)
	}

	byTenant := make(map[string][]string, len(tenants))
	for _, tenant := range tenants {
		var allowed []string
		for _, f := range domain.Fields() {
			ok, err := enforcer.Enforce(tenant, CasbinObject(f), casbinAction)
			if err != nil {
				return domain.FieldPolicy{}, fmt.Errorf("casbin enforce %s/%s: %w", tenant, f, err)
			}
			if ok {
				allowed = append(allowed, string(f))
			}
		}
		if len(allowed) > 0 {
			byTenant[tenant] = allowed
		}
	}

	p, err := domain.NewFieldPolicy(byTenant, fallback)
	if err != nil {
		return domain.FieldPolicy{}, err
	}
	return p.WithSource("casbin"), nil
}
