// Package model groups the data types of the flow orchestration core.
//
// Sub-packages:
//
//   - flow     – authored definitions, nodes, edges and retry policies
//   - snapshot – the immutable, compiled execution document
//   - run      – runs, run log entries and terminal results
//   - types    – node type registry and the executor plugin contract
package model
