// Package markmovieasviewed implements the Mark Movie as Viewed use case.
//
// A viewed movie carries an optional quick rating (1..5 stars, 0 for none). Marking it again with a
// different quick rating replaces the previous one; marking it again with the same one is idempotent.
package markmovieasviewed
