package engine

import (
	"github.com/hashicorp/go-hclog"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/progress"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/event"
	"github.com/viant/flowcore/service/messaging"
)

// Option customises the engine.
type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithParallel enables parallel node execution bounded by maxParallel.
func WithParallel(maxParallel int) Option {
	return func(s *Service) {
		s.config.Parallel = true
		s.config.MaxParallel = maxParallel
	}
}

// WithRunDAO sets the run store.
func WithRunDAO(runDAO dao.Service[string, run.Run]) Option {
	return func(s *Service) {
		s.runDAO = runDAO
	}
}

// WithLogDAO sets the run log store.
func WithLogDAO(logDAO dao.Service[string, run.Log]) Option {
	return func(s *Service) {
		s.logDAO = logDAO
	}
}

// WithQueue sets the queue feeding the worker pool.
func WithQueue(queue messaging.Queue[Job]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithProgressListener registers a callback receiving run progress updates.
func WithProgressListener(fn func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// WithEventPublisher streams every run log entry as an event.
func WithEventPublisher(publisher *event.Publisher[run.Log]) Option {
	return func(s *Service) {
		s.events = publisher
	}
}
