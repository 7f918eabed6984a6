// Package esbackend implements reviewstore.Backend on top of the event store.
//
// A review is a ReviewWritten event, a reaction slot change is a ReactionSet or ReactionCleared
// event. All three are appended unconditionally: the last writer wins. A movie's raw records are
// rebuilt by folding its events in sequence order.
//
// Run tails the store through an eventstore.AppendListener and notifies the subscribers of every
// movie touched by newly appended review events, which also makes writes of other processes
// sharing the same Postgres database visible.
package esbackend
