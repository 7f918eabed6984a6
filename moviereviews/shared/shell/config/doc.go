// Package config loads the reviewfeed configuration and builds the infrastructure handles derived from it.
//
// Configuration is layered with koanf: built-in defaults, then an optional YAML file,
// then REVIEWFEED_ prefixed environment variables where a double underscore nests
// (REVIEWFEED_STORE__ENGINE=postgres sets store.engine). The merged result is validated
// with go-playground/validator struct tags.
//
// The Postgres helpers build a pgxpool.Config, a *sql.DB or a *sqlx.DB (both via lib/pq)
// with the pool sizing taken from the store section.
package config
