package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// runParallel starts every node as soon as all its predecessors completed.
// The first node error cancels the remaining branches.
func (s *Service) runParallel(ctx context.Context, h *handle) error {
	doc := h.doc
	pending := make(map[string]int, len(doc.ExecutionPlan))
	for _, key := range doc.ExecutionPlan {
		pending[key] = len(doc.Dependencies(key))
	}
	dependents := doc.Dependents()

	group, groupCtx := errgroup.WithContext(ctx)
	var sem chan struct{}
	if s.config.MaxParallel > 0 {
		sem = make(chan struct{}, s.config.MaxParallel)
	}
	var mu sync.Mutex
	var schedule func(key string)
	schedule = func(key string) {
		group.Go(func() error {
			if sem != nil {
				select {
				case sem <- struct{}{}:
				case <-groupCtx.Done():
					return context.Cause(groupCtx)
				}
			}
			err := groupCtx.Err()
			if err == nil {
				err = s.runNode(groupCtx, h, key)
			}
			if sem != nil {
				<-sem
			}
			if err != nil {
				return err
			}
			var ready []string
			mu.Lock()
			for _, next := range dependents[key] {
				pending[next]--
				if pending[next] == 0 {
					ready = append(ready, next)
				}
			}
			mu.Unlock()
			for _, next := range ready {
				schedule(next)
			}
			return nil
		})
	}
	for _, key := range doc.ExecutionPlan {
		if pending[key] == 0 {
			schedule(key)
		}
	}
	err := group.Wait()
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	if err != nil {
		return err
	}
	for _, key := range doc.ExecutionPlan {
		if !h.ec.IsNodeExecuted(key) {
			return &DependencyError{NodeKey: key, Missing: h.ec.UnmetDependencies(doc.Dependencies(key))}
		}
	}
	return nil
}
