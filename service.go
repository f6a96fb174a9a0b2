package flowcore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/viant/flowcore/internal/idgen"
	"github.com/viant/flowcore/internal/logger"
	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/model/types"
	"github.com/viant/flowcore/service/builder"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/engine"
	"github.com/viant/flowcore/service/event"
	"github.com/viant/flowcore/service/executor"
	"github.com/viant/flowcore/service/messaging/memory"
	"github.com/viant/flowcore/service/meta"
	"github.com/viant/flowcore/service/validator"
	"github.com/viant/flowcore/tracing"
)

// Service manages the definition lifecycle and owns the runtime.
type Service struct {
	config          *Config
	stores          *Stores
	nodeTypes       *types.Registry
	executors       []types.Executor
	executorOptions []executor.Option
	engineOptions   []engine.Option
	logger          hclog.Logger
	metaService     *meta.Service
	eventHandler    func(*event.Event[run.Log])

	validator *validator.Service
	builder   *builder.Service
	runtime   *Runtime
	// mu serialises definition mutations.
	mu sync.Mutex
}

// New creates a service.
func New(options ...Option) (*Service, error) {
	return NewWithContext(context.Background(), options...)
}

// NewWithContext creates a service; ctx is used to open the configured
// stores.
func NewWithContext(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.ensureBaseSetup(ctx); err != nil {
		return nil, err
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) ensureBaseSetup(ctx context.Context) error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.logger == nil {
		s.logger = logger.New(s.config.Log.Level, s.config.Log.JSON)
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init(s.config.Tracing.ServiceName, "", s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if s.stores == nil {
		stores, err := NewStores(ctx, s.config.Store)
		if err != nil {
			return err
		}
		s.stores = stores
	}
	if s.nodeTypes == nil {
		s.nodeTypes = types.DefaultRegistry()
	}
	if s.metaService == nil {
		s.metaService = meta.New(nil)
	}
	return nil
}

func (s *Service) init() error {
	s.validator = validator.New(s.nodeTypes)
	s.builder = builder.New(s.nodeTypes)

	registry, err := executor.New(s.withBuiltinExecutors(), s.executorOptions...)
	if err != nil {
		return err
	}
	options := []engine.Option{
		engine.WithConfig(s.config.EngineConfig()),
		engine.WithRunDAO(s.stores.Runs),
		engine.WithLogDAO(s.stores.Logs),
		engine.WithLogger(s.logger),
	}
	var listener *event.Listener[run.Log]
	if s.eventHandler != nil {
		queue := memory.NewQueue[event.Event[run.Log]](memory.Config{QueueBuffer: s.config.Engine.QueueBuffer})
		publisher := event.NewPublisher[run.Log](queue)
		listener = event.NewListener[run.Log](publisher, s.eventHandler)
		options = append(options, engine.WithEventPublisher(publisher))
	}
	anEngine, err := engine.New(registry, append(options, s.engineOptions...)...)
	if err != nil {
		return err
	}
	s.runtime = &Runtime{service: s, engine: anEngine, executors: registry, listener: listener}
	return nil
}

// withBuiltinExecutors adds a pass-through executor for START, END and TASK
// types not claimed by a registered executor.
func (s *Service) withBuiltinExecutors() []types.Executor {
	claimed := map[string]bool{}
	names := map[string]bool{}
	for _, exec := range s.executors {
		if exec == nil {
			continue
		}
		names[exec.Name()] = true
		for _, code := range exec.SupportedTypes() {
			claimed[code] = true
		}
	}
	var builtin []string
	for _, code := range []string{types.TypeStart, types.TypeEnd, types.TypeTask} {
		if !claimed[code] {
			builtin = append(builtin, code)
		}
	}
	ret := append([]types.Executor{}, s.executors...)
	if len(builtin) > 0 {
		passthrough := executor.NewPassthrough(builtin...)
		if names[passthrough.Name()] {
			passthrough = passthrough.Named("builtin")
		}
		ret = append(ret, passthrough)
	}
	return ret
}

// Runtime returns the runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// NodeTypes returns the node type registry.
func (s *Service) NodeTypes() *types.Registry {
	return s.nodeTypes
}

// Validator returns the graph validator.
func (s *Service) Validator() *validator.Service {
	return s.validator
}

// Builder returns the snapshot builder.
func (s *Service) Builder() *builder.Service {
	return s.builder
}

// Close releases the stores.
func (s *Service) Close() error {
	return s.stores.Close()
}

// LoadDefinition decodes a YAML definition from any afs supported URL.
func (s *Service) LoadDefinition(ctx context.Context, URL string) (*flow.Definition, error) {
	data, err := s.metaService.Download(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition %v: %w", URL, err)
	}
	return flow.DecodeYAML(data)
}

// CreateDefinition validates and stores a new DRAFT definition. An empty id
// is generated.
func (s *Service) CreateDefinition(ctx context.Context, definition *flow.Definition) (*flow.Definition, error) {
	if definition == nil {
		return nil, fmt.Errorf("definition was nil")
	}
	if err := s.validator.Validate(definition.Graph); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if definition.ID == "" {
		definition.ID = idgen.New()
	} else if _, err := s.stores.Definitions.Load(ctx, definition.ID); err == nil {
		return nil, fmt.Errorf("definition %v: %w", definition.ID, dao.ErrAlreadyExists)
	}
	definition.State = flow.StateDraft
	definition.Version = 0
	if err := s.stores.Definitions.Save(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save definition %v: %w", definition.ID, err)
	}
	s.logger.Debug("definition created", "definition_id", definition.ID, "name", definition.Name)
	return definition, nil
}

// UpdateDefinition replaces the graph of a DRAFT definition.
func (s *Service) UpdateDefinition(ctx context.Context, id string, graph *flow.Graph) (*flow.Definition, error) {
	if err := s.validator.Validate(graph); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	definition, err := s.GetDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = definition.Replace(graph); err != nil {
		return nil, err
	}
	if err = s.stores.Definitions.Save(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save definition %v: %w", id, err)
	}
	return definition, nil
}

// GetDefinition loads a definition.
func (s *Service) GetDefinition(ctx context.Context, id string) (*flow.Definition, error) {
	definition, err := s.stores.Definitions.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("definition %v: %w", id, err)
		}
		return nil, err
	}
	return definition, nil
}

// ValidateDefinition runs the structural and publish checks without
// changing the definition.
func (s *Service) ValidateDefinition(ctx context.Context, id string) error {
	definition, err := s.GetDefinition(ctx, id)
	if err != nil {
		return err
	}
	return s.validator.ValidateForPublish(definition.Graph)
}

// Publish validates the draft, stores its snapshot and freezes it.
func (s *Service) Publish(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	definition, err := s.GetDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !definition.IsDraft() {
		return nil, fmt.Errorf("%w: %v", flow.ErrNotDraft, id)
	}
	if err = s.validator.ValidateForPublish(definition.Graph); err != nil {
		return nil, err
	}
	snap, err := s.builder.Build(definition, definition.NextVersion())
	if err != nil {
		return nil, err
	}
	if err = s.stores.Snapshots.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot %v: %w", snap.ID, err)
	}
	if err = definition.Publish(); err != nil {
		return nil, err
	}
	if err = s.stores.Definitions.Save(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save definition %v: %w", id, err)
	}
	s.logger.Info("definition published", "definition_id", id, "version", definition.Version, "snapshot_id", snap.ID)
	return snap, nil
}

// CreateNewVersion reopens a published definition as a draft. Published
// snapshots stay available.
func (s *Service) CreateNewVersion(ctx context.Context, id string) (*flow.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	definition, err := s.GetDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = definition.Fork(); err != nil {
		return nil, err
	}
	if err = s.stores.Definitions.Save(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to save definition %v: %w", id, err)
	}
	return definition, nil
}

// LatestSnapshot returns the highest version snapshot of a definition.
func (s *Service) LatestSnapshot(ctx context.Context, definitionID string) (*snapshot.Snapshot, error) {
	snapshots, err := s.stores.Snapshots.List(ctx, dao.NewParameter("definitionId", definitionID))
	if err != nil {
		return nil, &engine.SnapshotUnavailableError{DefinitionID: definitionID, Err: err}
	}
	var latest *snapshot.Snapshot
	for _, candidate := range snapshots {
		if latest == nil || candidate.Version > latest.Version {
			latest = candidate
		}
	}
	if latest == nil {
		return nil, &engine.SnapshotUnavailableError{DefinitionID: definitionID}
	}
	return latest, nil
}

// Snapshot loads a snapshot by id.
func (s *Service) Snapshot(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	return s.stores.Snapshots.Load(ctx, id)
}
