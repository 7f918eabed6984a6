// Package watchlist implements the Watchlist query use case.
//
// The query projects the movies a viewer currently keeps on their watchlist from the watchlist
// events, newest addition first. It never generates events.
package watchlist
