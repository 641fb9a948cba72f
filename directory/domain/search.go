package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"unicode/utf8"

	"employee-directory/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxSearchLen = 100
)

type SearchRequest struct {
	OrgID  string
	Search string
	Status string
	Page   int
	Limit  int
}

// Validate checa paginação e tamanho do termo. O tenant é validado à parte.
func (r SearchRequest) Validate() error {
	if r.Page < 1 {
		return apperr.InvalidArgument("Page must be >= 1")
	}
	if r.Limit < 1 || r.Limit > MaxLimit {
		return apperr.InvalidArgument(fmt.Sprintf("Limit must be between 1 and %d", MaxLimit))
	}
	if utf8.RuneCountInString(r.Search) > MaxSearchLen {
		return apperr.InvalidArgument(fmt.Sprintf("Search term must be at most %d characters", MaxSearchLen))
	}
	return nil
}

func (r SearchRequest) Offset() int { return (r.Page - 1) * r.Limit }

// SearchColumns são os atributos cobertos pelo termo livre.
func SearchColumns(includeLocation bool) []Field {
	cols := []Field{FieldFirstName, FieldLastName, FieldDepartment, FieldPosition}
	if includeLocation {
		cols = append(cols, FieldLocation)
	}
	return cols
}

// Filter é o predicado já resolvido que o store executa.
//
//	org_id = OrgID
//	AND lower(status) = lower(Status)           (se Status != "")
//	AND (col1 ILIKE %Term% OR col2 ILIKE ...)   (se Term != "")
//	ORDER BY id OFFSET Offset LIMIT Limit
type Filter struct {
	OrgID   string
	Status  string
	Term    string
	Columns []Field
	Offset  int
	Limit   int
}

func NewFilter(r SearchRequest, includeLocation bool) Filter {
	return Filter{
		OrgID:   r.OrgID,
		Status:  strings.TrimSpace(r.Status),
		Term:    r.Search,
		Columns: SearchColumns(includeLocation),
		Offset:  r.Offset(),
		Limit:   r.Limit,
	}
}

// Match aplica o predicado (sem paginação) a um registro em memória.
// Deve concordar com a versão SQL.
func (f Filter) Match(e Employee) bool {
	if e.OrgID != f.OrgID {
		return false
	}
	if f.Status != "" && Lower(e.Text(FieldStatus)) != Lower(f.Status) {
		return false
	}
	if f.Term == "" {
		return true
	}
	term := Lower(f.Term)
	for _, col := range f.Columns {
		if strings.Contains(Lower(e.Text(col)), term) {
			return true
		}
	}
	return false
}

// Lower é a caixa baixa Unicode de toda comparação da busca. O SQLite recebe
// a mesma função como lower(); o LOWER nativo dele só conhece ASCII.
// Um Caser não pode ser compartilhado entre goroutines.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
