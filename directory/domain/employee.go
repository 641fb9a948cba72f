package domain

import (
	"fmt"
	"strings"
)

// Employee é a linha do store. Os ponteiros são atributos que podem ser NULL.
type Employee struct {
	ID           string  `db:"id" json:"id"`
	OrgID        string  `db:"org_id" json:"org_id"`
	FirstName    string  `db:"first_name" json:"first_name"`
	LastName     string  `db:"last_name" json:"last_name"`
	ContactEmail *string `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone *string `db:"contact_phone" json:"contact_phone,omitempty"`
	Department   string  `db:"department" json:"department"`
	Position     string  `db:"position" json:"position"`
	Location     *string `db:"location" json:"location,omitempty"`
	Status       *string `db:"status" json:"status,omitempty"`
}

// Field é o nome de um atributo projetável.
type Field string

const (
	FieldFirstName    Field = "first_name"
	FieldLastName     Field = "last_name"
	FieldContactEmail Field = "contact_email"
	FieldContactPhone Field = "contact_phone"
	FieldDepartment   Field = "department"
	FieldPosition     Field = "position"
	FieldLocation     Field = "location"
	FieldStatus       Field = "status"
)

// Fields devolve os campos projetáveis na ordem canônica.
// id e org_id nunca são projetados.
func Fields() []Field {
	return []Field{
		FieldFirstName,
		FieldLastName,
		FieldContactEmail,
		FieldContactPhone,
		FieldDepartment,
		FieldPosition,
		FieldLocation,
		FieldStatus,
	}
}

func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Fields() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown employee field %q", s)
}

// ParseFields converte e deduplica mantendo a ordem de entrada.
func ParseFields(names []string) ([]Field, error) {
	out := make([]Field, 0, len(names))
	seen := make(map[Field]struct{}, len(names))
	for _, n := range names {
		f, err := ParseField(n)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

// Value lê um campo por nome. Atributo NULL volta como nil.
func (e Employee) Value(f Field) any {
	switch f {
	case FieldFirstName:
		return e.FirstName
	case FieldLastName:
		return e.LastName
	case FieldContactEmail:
		return deref(e.ContactEmail)
	case FieldContactPhone:
		return deref(e.ContactPhone)
	case FieldDepartment:
		return e.Department
	case FieldPosition:
		return e.Position
	case FieldLocation:
		return deref(e.Location)
	case FieldStatus:
		return deref(e.Status)
	default:
		return nil
	}
}

// Text é o valor do campo como string ("" para NULL); usado nos filtros.
func (e Employee) Text(f Field) string {
	if v, ok := e.Value(f).(string); ok {
		return v
	}
	return ""
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Ptr é um atalho para preencher atributos opcionais.
func Ptr(s string) *string { return &s }
