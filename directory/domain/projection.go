package domain

import (
	"bytes"
	"encoding/json"
)

// Projection é o subconjunto autorizado de um registro, na ordem da política.
// Campo fora da lista não aparece; campo permitido e NULL sai como null.
type Projection struct {
	fields []Field
	values []any
}

func Project(e Employee, allowed []Field) Projection {
	p := Projection{
		fields: make([]Field, 0, len(allowed)),
		values: make([]any, 0, len(allowed)),
	}
	for _, f := range allowed {
		p.fields = append(p.fields, f)
		p.values = append(p.values, e.Value(f))
	}
	return p
}

func (p Projection) Fields() []Field {
	out := make([]Field, len(p.fields))
	copy(out, p.fields)
	return out
}

func (p Projection) Get(f Field) (any, bool) {
	for i, have := range p.fields {
		if have == f {
			return p.values[i], true
		}
	}
	return nil, false
}

func (p Projection) Map() map[string]any {
	m := make(map[string]any, len(p.fields))
	for i, f := range p.fields {
		m[string(f)] = p.values[i]
	}
	return m
}

func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(f))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
