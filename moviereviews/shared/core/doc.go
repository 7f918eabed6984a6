// Package core contains the domain of the review feed: reviews of movies, per-user reactions on
// reviews, the two rating scales, the viewer identity and the domain events of the event-sourced
// slices (watchlist, viewings, reviews and reactions).
//
// Everything in here is pure: no I/O, no logging, no clocks. Time is always passed in.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
