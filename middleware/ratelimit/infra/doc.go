// Package infra implementa os contratos do admission gate.
//
// SlidingWindowStore guarda os timestamps admitidos por tenant; SearchSlots
// segura o teto de buscas em voo; os StatsStore (memória, Redis, Prometheus)
// contam as decisões.
package infra
