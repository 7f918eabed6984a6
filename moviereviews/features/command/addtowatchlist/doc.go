// Package addtowatchlist implements the Add Movie to Watchlist use case.
//
// The movie snapshot (title, poster, release date, vote average) is captured into the event so the
// watchlist can be listed without the external catalog. Adding a movie that already is on the
// viewer's watchlist is idempotent.
package addtowatchlist
