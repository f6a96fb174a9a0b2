// Package memory provides a generic in-memory dao.Service.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/flowcore/internal/xjson"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/dao/criteria"
)

// Store keeps entities of type *T mapped by a comparable key K obtained from
// keySelector. Records are copied on the way in and on the way out with the
// same JSON encoding the durable stores use, so callers never share state
// with the store.
type Store[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	order       []K
	keySelector func(*T) K
}

// New creates a new Store.
func New[K comparable, T any](keySelector func(*T) K) *Store[K, T] {
	return &Store[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// Save stores or overwrites a record.
func (s *Store[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	var zero K
	if key == zero {
		return dao.ErrInvalidID
	}
	stored, err := clone(v)
	if err != nil {
		return fmt.Errorf("failed to copy %v: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		s.order = append(s.order, key)
	}
	s.records[key] = stored
	return nil
}

// Load returns a record by key.
func (s *Store[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return clone(v)
}

// Delete removes a record.
func (s *Store[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.records, key)
	for i, candidate := range s.order {
		if candidate == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns matching records in insertion order.
func (s *Store[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, key := range s.order {
		v := s.records[key]
		if !criteria.Match(v, parameters) {
			continue
		}
		record, err := clone(v)
		if err != nil {
			return nil, fmt.Errorf("failed to copy %v: %w", key, err)
		}
		out = append(out, record)
	}
	return out, nil
}

func clone[T any](v *T) (*T, error) {
	data, err := xjson.Marshal(v)
	if err != nil {
		return nil, err
	}
	ret := new(T)
	if err := xjson.Unmarshal(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

var _ dao.Service[string, struct{}] = (*Store[string, struct{}])(nil)
