// Package engine executes published snapshots.
//
// Runs are queued to a fixed worker pool. Each run walks the execution plan
// (or, in parallel mode, the dependency graph), invoking the executor
// registered for every node type, retrying failed nodes according to their
// retry policy and recording START, SUCCESS and ERROR log entries. Every run
// ends SUCCESS, FAILED or INTERRUPTED with a result document.
package engine
