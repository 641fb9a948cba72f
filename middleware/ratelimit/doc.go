// Package ratelimit fornece adapters HTTP (net/http) para o admission gate por
// tenant e para o limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão admit/reject, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela deslizante, semáforo, estatísticas)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo na busca de funcionários:
//
//   1) Extrai o tenant (org_id na query ou header X-Org-ID)
//   2) Valida o tenant (desconhecido => 400, sem consumir vaga)
//   3) Chama a camada application para obter a decisão
//   4) Se bloqueado, responde 429 com Retry-After = janela; sem vaga de concorrência, 503
//   5) Se permitido, chama o próximo handler (a busca)
//
// Configuração via RATE_LIMIT, RATE_WINDOW_SECONDS, RATE_MAX_TENANT_ENTRIES,
// CONCURRENCY_MAX e CONCURRENCY_TIMEOUT (ver internal/config).
package ratelimit
