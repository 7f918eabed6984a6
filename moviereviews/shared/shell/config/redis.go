package config

import (
	"github.com/redis/go-redis/v9"
)

// Options returns the go-redis client options for this section.
func (c RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
}

// NewClient creates a redis client. It does not connect until first use.
func (c RedisConfig) NewClient() *redis.Client {
	return redis.NewClient(c.Options())
}
