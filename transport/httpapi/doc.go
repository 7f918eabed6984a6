// Package httpapi exposes the review feed, the reactions, the public review list and the viewer's
// watchlist and viewings over HTTP. A live feed is pushed over a websocket, one JSON snapshot per
// update.
//
// Viewers authenticate with a bearer token. Without one the request runs as the anonymous viewer,
// which may read but not write.
package httpapi
