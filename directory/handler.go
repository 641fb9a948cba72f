// Package directory expõe a busca de funcionários por HTTP.
//
//	GET /search/employees?org_id=org1&search=ana&status=active&page=1&limit=10
//
// A resposta é uma lista JSON de projeções; erros saem no envelope de apperr.
package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"employee-directory/directory/domain"
	"employee-directory/internal/apperr"
)

type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.Projection, error)
}

type Handler struct {
	Engine Searcher
	Errors apperr.Responder
	// Tenant resolve o org_id da requisição. Tem que ser a mesma função que
	// o admission gate usa, senão a vaga é cobrada de um tenant e a busca
	// roda para outro. Nil lê só o query param org_id.
	Tenant func(r *http.Request) string
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := ParseSearchRequest(r)
	if err != nil {
		h.Errors.Respond(w, r, err)
		return
	}
	if h.Tenant != nil {
		req.OrgID = strings.TrimSpace(h.Tenant(r))
	}

	out, err := h.Engine.Search(r.Context(), req)
	if err != nil {
		h.Errors.Respond(w, r, err)
		return
	}
	if out == nil {
		out = []domain.Projection{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

// ParseSearchRequest lê os parâmetros da query. page/limit ausentes usam os
// padrões (1 e 10); valores não numéricos são InvalidArgument.
func ParseSearchRequest(r *http.Request) (domain.SearchRequest, error) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), "page", domain.DefaultPage)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	limit, err := intParam(q.Get("limit"), "limit", domain.DefaultLimit)
	if err != nil {
		return domain.SearchRequest{}, err
	}

	return domain.SearchRequest{
		OrgID:  strings.TrimSpace(q.Get("org_id")),
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	}, nil
}

func intParam(raw, name string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidArgument(name + " must be an integer")
	}
	return n, nil
}
