package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"employee-directory/directory/domain"
)

var employeesBucket = []byte("employees")

// BoltStore guarda cada registro como JSON sob a chave org_id \x00 id, então
// um cursor com prefixo do tenant já percorre os registros em ordem de id.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(employeesBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func boltKey(orgID, id string) []byte {
	k := make([]byte, 0, len(orgID)+1+len(id))
	k = append(k, orgID...)
	k = append(k, 0)
	return append(k, id...)
}

func (s *BoltStore) Scan(ctx context.Context, f domain.Filter) ([]domain.Employee, error) {
	out := []domain.Employee{}
	skipped := 0

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(employeesBucket)
		if b == nil {
			return errors.New("employees bucket missing")
		}
		prefix := boltKey(f.OrgID, "")
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e domain.Employee
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode %q: %w", k, err)
			}
			if !f.Match(e) {
				continue
			}
			if skipped < f.Offset {
				skipped++
				continue
			}
			out = append(out, e)
			if f.Limit > 0 && len(out) >= f.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	return out, nil
}

func (s *BoltStore) Count(ctx context.Context) (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(employeesBucket); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

func (s *BoltStore) Insert(ctx context.Context, rows ...domain.Employee) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(employeesBucket)
		for _, r := range rows {
			if r.ID == "" || r.OrgID == "" {
				return errors.New("insert: employee id and org_id are required")
			}
			v, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := b.Put(boltKey(r.OrgID, r.ID), v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error { return s.db.Close() }
