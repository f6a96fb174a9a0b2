// Package executor holds the immutable registry that maps node type codes to
// executor plugins, plus the built-in pass-through executor.
package executor
