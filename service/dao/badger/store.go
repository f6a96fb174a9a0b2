// Package badger provides a dao.Service on an embedded badger key-value
// store. One database may hold many collections; each store owns a key
// prefix.
package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/viant/flowcore/internal/xjson"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/dao/criteria"
)

// Open opens a database at dir; an empty dir opens an in-memory database.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}
	return db, nil
}

// Store keeps JSON encoded *T under "<collection>/<id>" keys.
type Store[T any] struct {
	db          *badger.DB
	prefix      []byte
	keySelector func(*T) string
}

// New creates a store for a collection.
func New[T any](db *badger.DB, collection string, keySelector func(*T) string) *Store[T] {
	return &Store[T]{db: db, prefix: []byte(collection + "/"), keySelector: keySelector}
}

func (s *Store[T]) key(id string) []byte {
	ret := make([]byte, 0, len(s.prefix)+len(id))
	ret = append(ret, s.prefix...)
	return append(ret, id...)
}

// Save persists a record.
func (s *Store[T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	id := s.keySelector(v)
	if id == "" {
		return dao.ErrInvalidID
	}
	data, err := xjson.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %v: %w", id, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(id), data)
	})
}

// Load retrieves a record.
func (s *Store[T]) Load(_ context.Context, id string) (*T, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	ret := new(T)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return xjson.Unmarshal(val, ret)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Delete removes a record.
func (s *Store[T]) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(s.key(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", dao.ErrNotFound, id)
			}
			return err
		}
		return txn.Delete(s.key(id))
	})
}

// List iterates the collection prefix in key order and returns matching
// records.
func (s *Store[T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	var ret []*T
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(s.prefix); it.ValidForPrefix(s.prefix); it.Next() {
			record := new(T)
			if err := it.Item().Value(func(val []byte) error {
				return xjson.Unmarshal(val, record)
			}); err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			if criteria.Match(record, parameters) {
				ret = append(ret, record)
			}
		}
		return nil
	})
	return ret, err
}
