// Package publicreviews implements the Public Reviews query use case.
//
// It projects the reviews of all movies from the review events, orders them like a movie feed
// (newest first) and attaches the reaction summary for the querying viewer. Anonymous viewers may
// read it, their summaries carry no own reaction.
package publicreviews
