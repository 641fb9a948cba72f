package infra

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"employee-directory/directory/domain"
)

var employeeColumns = []string{
	"id", "org_id", "first_name", "last_name",
	"contact_email", "contact_phone",
	"department", "position", "location", "status",
}

// searchQuery monta o SELECT paginado de um Filter; o mesmo builder serve
// SQLite (?) e PostgreSQL ($n). Os dois lados da comparação passam pelo LOWER
// do banco, então um termo com a mesma caixa do registro sempre casa.
func searchQuery(f domain.Filter, ph sq.PlaceholderFormat) sq.SelectBuilder {
	q := sq.Select(employeeColumns...).
		From("employees").
		Where(sq.Eq{"org_id": f.OrgID}).
		OrderBy("id").
		PlaceholderFormat(ph)

	if f.Status != "" {
		q = q.Where(sq.Expr("LOWER(status) = LOWER(?)", domain.Lower(f.Status)))
	}

	if f.Term != "" && len(f.Columns) > 0 {
		pattern := likePattern(f.Term)
		or := sq.Or{}
		for _, col := range f.Columns {
			or = append(or, sq.Expr("LOWER("+string(col)+") LIKE LOWER(?) ESCAPE '\\'", pattern))
		}
		q = q.Where(or)
	}

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

// likePattern escapa curingas para que o termo seja literal.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(domain.Lower(term)) + "%"
}

func insertQuery(ph sq.PlaceholderFormat, rows ...domain.Employee) sq.InsertBuilder {
	q := sq.Insert("employees").Columns(employeeColumns...).PlaceholderFormat(ph)
	for _, r := range rows {
		q = q.Values(
			r.ID, r.OrgID, r.FirstName, r.LastName,
			r.ContactEmail, r.ContactPhone,
			r.Department, r.Position, r.Location, r.Status,
		)
	}
	return q
}
