// Package eventstore holds what the engines (memoryengine, postgresengine) share: filters over
// dynamic event streams, StorableEvent, consistency hints, append listeners, the observability
// interfaces and the sentinel errors.
//
// A dynamic stream is whatever a Filter selects at query time. A decision reads its stream,
// remembers the highest sequence number it saw and appends conditionally against the same filter:
//
//	filter := BuildEventFilter().
//		Matching().
//		AnyEventTypeOf("MovieAddedToWatchlist", "MovieRemovedFromWatchlist").
//		AndAllPredicatesOf(P("ViewerID", viewerID), PInt("MovieID", 603)).
//		Finalize()
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	// decide ...
//	err = store.Append(ctx, filter, maxSeq, newEvent) // ErrConcurrencyConflict if the stream moved
//
// Facts that need no decision, such as a reaction overwriting the previous one, use
// AppendUnconditionally instead.
package eventstore
