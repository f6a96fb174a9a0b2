// Package flowcore provides a flow orchestration core: directed graphs of
// typed nodes are validated, published as immutable snapshots and executed
// by a worker pool with per-node retry, cancellation and an auditable log.
//
// End-users typically interact with the engine via the Service facade
// exposed by the root package:
//
//	srv, _ := flowcore.New()
//	def, _ := srv.CreateDefinition(ctx, flow.NewDefinition("", "greet", graph))
//	_, _ = srv.Publish(ctx, def.ID)
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	result, _ := rt.Execute(ctx, def.ID, map[string]interface{}{"name": "x"})
//
// Node behaviour is supplied by executors (types.Executor) registered once
// at construction.
package flowcore
