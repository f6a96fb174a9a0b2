// Package postgres provides a dao.Service on PostgreSQL via pgx. Records of
// all collections share one JSONB table; List filters are pushed down as
// JSONB containment on the entity attributes.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/viant/flowcore/internal/xjson"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/dao/criteria"
)

// Connect opens a pool and ensures the schema exists.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if err := CreateSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}
	return pool, nil
}

// Store keeps *T of one collection.
type Store[T any] struct {
	db          *pgxpool.Pool
	collection  string
	keySelector func(*T) string
}

// New creates a store for a collection.
func New[T any](db *pgxpool.Pool, collection string, keySelector func(*T) string) *Store[T] {
	return &Store[T]{db: db, collection: collection, keySelector: keySelector}
}

// Save upserts a record.
func (s *Store[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	id := s.keySelector(v)
	if id == "" {
		return dao.ErrInvalidID
	}
	data, err := xjson.Marshal(v)
	if err != nil {
		return fmt.Errorf("postgres: marshal %s/%s: %w", s.collection, id, err)
	}
	attributes, err := attributesOf(v)
	if err != nil {
		return fmt.Errorf("postgres: attributes %s/%s: %w", s.collection, id, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO flowcore_records (collection, id, attributes, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id)
		DO UPDATE SET attributes = EXCLUDED.attributes, data = EXCLUDED.data, updated_at = NOW()`,
		s.collection, id, attributes, data)
	if err != nil {
		return fmt.Errorf("postgres: save %s/%s: %w", s.collection, id, err)
	}
	return nil
}

// Load retrieves a record.
func (s *Store[T]) Load(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM flowcore_records WHERE collection = $1 AND id = $2`,
		s.collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s/%s: %w", s.collection, id, err)
	}
	ret := new(T)
	if err := xjson.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("postgres: decode %s/%s: %w", s.collection, id, err)
	}
	return ret, nil
}

// Delete removes a record.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM flowcore_records WHERE collection = $1 AND id = $2`, s.collection, id)
	if err != nil {
		return fmt.Errorf("postgres: delete %s/%s: %w", s.collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", dao.ErrNotFound, id)
	}
	return nil
}

// List returns matching records ordered by creation time.
func (s *Store[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	filter, err := containment(parameters)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `
		SELECT data FROM flowcore_records
		WHERE collection = $1 AND attributes @> $2::jsonb
		ORDER BY created_at, id`, s.collection, filter)
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s: %w", s.collection, err)
	}
	defer rows.Close()
	var ret []*T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", s.collection, err)
		}
		record := new(T)
		if err := xjson.Unmarshal(data, record); err != nil {
			return nil, fmt.Errorf("postgres: decode %s: %w", s.collection, err)
		}
		if criteria.Match(record, parameters) {
			ret = append(ret, record)
		}
	}
	return ret, rows.Err()
}

func attributesOf(v interface{}) ([]byte, error) {
	attributed, ok := v.(dao.Attributed)
	if !ok {
		return []byte("{}"), nil
	}
	return xjson.Marshal(attributed.Attributes())
}

// containment encodes single-valued parameters as a JSONB containment
// document; multi-valued ones are matched after loading.
func containment(parameters []*dao.Parameter) ([]byte, error) {
	filter := map[string]interface{}{}
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		if _, multi := parameter.Value.([]string); multi {
			continue
		}
		filter[parameter.Name] = parameter.Value
	}
	return xjson.Marshal(filter)
}
