// Package removefromwatchlist implements the Remove Movie from Watchlist use case.
// Removing a movie that is not on the viewer's watchlist is idempotent.
package removefromwatchlist
