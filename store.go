package flowcore

import (
	"context"
	"fmt"

	"github.com/viant/afs/url"
	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/dao/badger"
	"github.com/viant/flowcore/service/dao/fs"
	"github.com/viant/flowcore/service/dao/memory"
	"github.com/viant/flowcore/service/dao/postgres"
)

// Collections.
const (
	DefinitionCollection = "definitions"
	SnapshotCollection   = "snapshots"
	RunCollection        = "runs"
	LogCollection        = "logs"
)

// Stores groups the persistence collaborators of the service.
type Stores struct {
	Definitions dao.Service[string, flow.Definition]
	Snapshots   dao.Service[string, snapshot.Snapshot]
	Runs        dao.Service[string, run.Run]
	Logs        dao.Service[string, run.Log]
	closer      func() error
}

// Close releases the backing connection, if any.
func (s *Stores) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

func definitionKey(d *flow.Definition) string { return d.ID }
func snapshotKey(s *snapshot.Snapshot) string { return s.ID }
func runKey(r *run.Run) string                { return r.ID }
func logKey(l *run.Log) string                { return l.ID }

// NewMemoryStores returns in-memory stores.
func NewMemoryStores() *Stores {
	return &Stores{
		Definitions: memory.New[string, flow.Definition](definitionKey),
		Snapshots:   memory.New[string, snapshot.Snapshot](snapshotKey),
		Runs:        memory.New[string, run.Run](runKey),
		Logs:        memory.New[string, run.Log](logKey),
	}
}

// NewStores creates stores for the configured backend.
func NewStores(ctx context.Context, config StoreConfig) (*Stores, error) {
	switch config.Kind {
	case "", StoreMemory:
		return NewMemoryStores(), nil
	case StoreFS:
		return newFSStores(ctx, config.URL)
	case StoreBadger:
		db, err := badger.Open(config.URL)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Definitions: badger.New[flow.Definition](db, DefinitionCollection, definitionKey),
			Snapshots:   badger.New[snapshot.Snapshot](db, SnapshotCollection, snapshotKey),
			Runs:        badger.New[run.Run](db, RunCollection, runKey),
			Logs:        badger.New[run.Log](db, LogCollection, logKey),
			closer:      db.Close,
		}, nil
	case StorePostgres:
		pool, err := postgres.Connect(ctx, config.URL)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Definitions: postgres.New[flow.Definition](pool, DefinitionCollection, definitionKey),
			Snapshots:   postgres.New[snapshot.Snapshot](pool, SnapshotCollection, snapshotKey),
			Runs:        postgres.New[run.Run](pool, RunCollection, runKey),
			Logs:        postgres.New[run.Log](pool, LogCollection, logKey),
			closer: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store kind: %v", config.Kind)
}

func newFSStores(ctx context.Context, baseURL string) (*Stores, error) {
	definitions, err := fs.New[flow.Definition](ctx, url.Join(baseURL, DefinitionCollection), definitionKey)
	if err != nil {
		return nil, err
	}
	snapshots, err := fs.New[snapshot.Snapshot](ctx, url.Join(baseURL, SnapshotCollection), snapshotKey)
	if err != nil {
		return nil, err
	}
	runs, err := fs.New[run.Run](ctx, url.Join(baseURL, RunCollection), runKey)
	if err != nil {
		return nil, err
	}
	logs, err := fs.New[run.Log](ctx, url.Join(baseURL, LogCollection), logKey)
	if err != nil {
		return nil, err
	}
	return &Stores{Definitions: definitions, Snapshots: snapshots, Runs: runs, Logs: logs}, nil
}
