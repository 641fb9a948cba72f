package domain

import "context"

// RecordStore executa um Filter já paginado. A ordem é por id, estável entre
// chamadas com os mesmos dados.
type RecordStore interface {
	Scan(ctx context.Context, f Filter) ([]Employee, error)
}

// RecordWriter é usado pelo seed.
type RecordWriter interface {
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, rows ...Employee) error
}

type Store interface {
	RecordStore
	RecordWriter
	Close() error
}
