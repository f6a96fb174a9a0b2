package flowcore

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/flowcore/service/engine"
	"github.com/viant/flowcore/service/meta"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreFS       = "fs"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML or JSON; zero fields inherit package defaults.
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

type EngineConfig struct {
	WorkerCount    int           `json:"workers" yaml:"workers"`
	QueueBuffer    int           `json:"queueBuffer" yaml:"queueBuffer"`
	DefaultTimeout time.Duration `json:"defaultTimeout" yaml:"defaultTimeout"`
	RetryBaseDelay time.Duration `json:"retryBaseDelay" yaml:"retryBaseDelay"`
	CancelGrace    time.Duration `json:"cancelGrace" yaml:"cancelGrace"`
	Parallel       bool          `json:"parallel" yaml:"parallel"`
	MaxParallel    int           `json:"maxParallel" yaml:"maxParallel"`
}

// StoreConfig selects the persistence backend. URL is a base URL for fs, a
// directory for badger (empty means in-memory) and a DSN for postgres.
type StoreConfig struct {
	Kind string `json:"kind" yaml:"kind"`
	URL  string `json:"url" yaml:"url"`
}

type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	OutputFile  string `json:"outputFile" yaml:"outputFile"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	JSON  bool   `json:"json" yaml:"json"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to WithConfig.
func DefaultConfig() *Config {
	def := engine.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			WorkerCount:    def.WorkerCount,
			QueueBuffer:    def.QueueBuffer,
			DefaultTimeout: def.DefaultTimeout,
			RetryBaseDelay: def.RetryBaseDelay,
			CancelGrace:    def.CancelGrace,
		},
		Store:   StoreConfig{Kind: StoreMemory},
		Tracing: TracingConfig{ServiceName: "flowcore"},
		Log:     LogConfig{Level: "info"},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Store.Kind {
	case "", StoreMemory, StoreBadger:
	case StoreFS, StorePostgres:
		if c.Store.URL == "" {
			return fmt.Errorf("store.url is required for %v store", c.Store.Kind)
		}
	default:
		return fmt.Errorf("unsupported store kind: %v", c.Store.Kind)
	}
	return c.EngineConfig().Validate()
}

// EngineConfig converts the engine section.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		WorkerCount:    c.Engine.WorkerCount,
		QueueBuffer:    c.Engine.QueueBuffer,
		DefaultTimeout: c.Engine.DefaultTimeout,
		RetryBaseDelay: c.Engine.RetryBaseDelay,
		CancelGrace:    c.Engine.CancelGrace,
		Parallel:       c.Engine.Parallel,
		MaxParallel:    c.Engine.MaxParallel,
	}
}

// LoadConfig reads a YAML configuration from any afs supported URL,
// expanding ${env.KEY} references. Fields missing from the document keep
// their defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := meta.New(nil).Download(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
