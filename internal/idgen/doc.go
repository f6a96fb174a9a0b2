// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Run, snapshot and log identifiers are produced here; callers treat them as
// opaque strings.
package idgen
