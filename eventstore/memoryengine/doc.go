// Package memoryengine provides an in-process event store with the same semantics as postgresengine.
//
// It backs single-node deployments and tests. Predicates are evaluated like jsonb containment
// on top-level scalar keys, conditional appends are serialized by a mutex, and appends are
// broadcast to Listen subscribers as coalesced signals.
package memoryengine
