// Package viewedmovies implements the Viewed Movies query use case: the movies a viewer marked as
// seen, each with its optional quick rating, most recently marked first.
package viewedmovies
