// Package containers starts throwaway Postgres and Redis instances with testcontainers-go.
//
// All files except this one carry the integration build tag, run them with:
//
//	go test -tags integration ./...
package containers
