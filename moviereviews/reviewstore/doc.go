// Package reviewstore is the boundary between the review feed and the key-value store holding
// reviews and reactions.
//
// A Backend speaks in raw records: one JSON document per review, keyed by an opaque store id,
// with the reactions embedded as a userId to emoji map. The Adapter turns those records into
// core.Review values, skipping malformed records and dropping unknown reaction symbols, and
// wraps every backend failure with core.ErrStoreUnavailable. It holds no review state.
//
// Hub is the shared subscription fan-out used by the backends in the subpackages: esbackend
// keeps reviews as events in the event store, redisbackend keeps them in Redis hashes.
package reviewstore
