// Package progress keeps aggregated node counters of a single run so that
// callers can observe a run while it executes.
package progress
