package flowcore

import (
	"github.com/hashicorp/go-hclog"
	"github.com/viant/afs/storage"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/model/types"
	"github.com/viant/flowcore/progress"
	"github.com/viant/flowcore/service/engine"
	"github.com/viant/flowcore/service/event"
	"github.com/viant/flowcore/service/executor"
	"github.com/viant/flowcore/service/meta"
	"github.com/viant/flowcore/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithStores sets the persistence collaborators; unset stores fall back to
// the configured backend.
func WithStores(stores *Stores) Option {
	return func(s *Service) {
		s.stores = stores
	}
}

// WithNodeTypes replaces the default node type registry.
func WithNodeTypes(registry *types.Registry) Option {
	return func(s *Service) {
		s.nodeTypes = registry
	}
}

// WithExecutors registers node executors. Types they claim take precedence
// over the built-in pass-through executor.
func WithExecutors(executors ...types.Executor) Option {
	return func(s *Service) {
		s.executors = append(s.executors, executors...)
	}
}

// WithExecutorOptions passes options to the executor registry, e.g. a
// listener.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithEngineOptions passes options to the execution engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Service) {
		s.engineOptions = append(s.engineOptions, opts...)
	}
}

// WithProgressListener observes run progress.
func WithProgressListener(fn func(progress.Progress)) Option {
	return func(s *Service) {
		s.engineOptions = append(s.engineOptions, engine.WithProgressListener(fn))
	}
}

// WithMetaService sets the document loader used by LoadDefinition.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaFsOptions with meta file system options, e.g. an embed.FS
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaService = meta.New(nil, options...)
	}
}

// WithRunEventListener streams run log entries to handler while the
// runtime is started.
func WithRunEventListener(handler func(*event.Event[run.Log])) Option {
	return func(s *Service) {
		s.eventHandler = handler
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
