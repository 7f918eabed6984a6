package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/eventstore/memoryengine"
	"github.com/AntonStoeckl/reviewfeed/eventstore/postgresengine"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore/esbackend"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore/redisbackend"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell/config"
)

// eventStore is what both engines offer.
type eventStore interface {
	shell.EventStore
	LatestSequenceNumber(ctx context.Context) (eventstore.MaxSequenceNumberUint, error)
}

type stores struct {
	events       eventStore
	reviews      reviewstore.Backend
	reviewsAreES bool
	runTailer    func(ctx context.Context) error
	closers      []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger, t *telemetry) (*stores, error) {
	s := &stores{}

	listener, err := s.openEventStore(ctx, cfg.Store, logger, t)
	if err != nil {
		s.close()
		return nil, err
	}

	switch cfg.Store.ReviewBackend {
	case config.ReviewBackendRedis:
		client := cfg.Redis.NewClient()
		s.closers = append(s.closers, func() { _ = client.Close() })

		backend, backendErr := redisbackend.New(
			client,
			redisbackend.WithKeyPrefix(cfg.Redis.KeyPrefix),
			redisbackend.WithChannel(cfg.Redis.Channel),
			redisbackend.WithContextualLogger(logger),
		)
		if backendErr != nil {
			s.close()
			return nil, backendErr
		}

		s.reviews = backend
		s.runTailer = backend.Run

	default:
		backend, backendErr := esbackend.New(s.events, listener, esbackend.WithContextualLogger(logger))
		if backendErr != nil {
			s.close()
			return nil, backendErr
		}

		s.reviews = backend
		s.reviewsAreES = true
		s.runTailer = backend.Run
	}

	return s, nil
}

// openEventStore sets s.events and returns the listener the review tailer follows.
func (s *stores) openEventStore(
	ctx context.Context,
	cfg config.StoreConfig,
	logger *slog.Logger,
	t *telemetry,
) (eventstore.AppendListener, error) {

	if cfg.Engine == config.EngineMemory {
		options := []memoryengine.Option{memoryengine.WithContextualLogger(logger)}
		if t.metrics != nil {
			options = append(options, memoryengine.WithMetrics(t.metrics))
		}

		store := memoryengine.NewEventStore(options...)
		s.events = store

		return store, nil
	}

	options := []postgresengine.Option{
		postgresengine.WithTableName(cfg.TableName),
		postgresengine.WithContextualLogger(logger),
	}

	if cfg.NotifyChannel != "" {
		options = append(options, postgresengine.WithNotifyChannel(cfg.NotifyChannel))
	}

	if t.metrics != nil {
		options = append(options, postgresengine.WithMetrics(t.metrics))
	}

	if t.tracing != nil {
		options = append(options, postgresengine.WithTracing(t.tracing))
	}

	store, listener, err := s.openPostgres(ctx, cfg, logger, options)
	if err != nil {
		return nil, err
	}

	if cfg.EnsureSchema {
		if err = store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure event store schema: %w", err)
		}
	}

	s.events = store

	return listener, nil
}

func (s *stores) openPostgres(
	ctx context.Context,
	cfg config.StoreConfig,
	logger *slog.Logger,
	options []postgresengine.Option,
) (*postgresengine.EventStore, eventstore.AppendListener, error) {

	var store *postgresengine.EventStore
	var listener eventstore.AppendListener

	switch cfg.Adapter {
	case config.AdapterSQLDB:
		db, err := cfg.OpenSQLDB(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })

		if cfg.ReplicaDSN != "" {
			replica, replicaErr := cfg.OpenSQLDB(ctx, cfg.ReplicaDSN)
			if replicaErr != nil {
				return nil, nil, replicaErr
			}
			s.closers = append(s.closers, func() { _ = replica.Close() })

			store, err = postgresengine.NewEventStoreFromSQLDBAndReplica(db, replica, options...)
		} else {
			store, err = postgresengine.NewEventStoreFromSQLDB(db, options...)
		}

		if err != nil {
			return nil, nil, err
		}

	case config.AdapterSQLXDB:
		db, err := cfg.OpenSQLX(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })

		if store, err = postgresengine.NewEventStoreFromSQLX(db, options...); err != nil {
			return nil, nil, err
		}

	default:
		pool, err := cfg.OpenPGXPool(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, pool.Close)

		if cfg.ReplicaDSN != "" {
			replica, replicaErr := cfg.OpenPGXPool(ctx, cfg.ReplicaDSN)
			if replicaErr != nil {
				return nil, nil, replicaErr
			}
			s.closers = append(s.closers, replica.Close)

			store, err = postgresengine.NewEventStoreFromPGXPoolAndReplica(pool, replica, options...)
		} else {
			store, err = postgresengine.NewEventStoreFromPGXPool(pool, options...)
		}

		if err != nil {
			return nil, nil, err
		}

		if cfg.Listener == config.ListenerNotify {
			if listener, err = postgresengine.NewPGXListener(pool, cfg.NotifyChannel, logger); err != nil {
				return nil, nil, err
			}
		}
	}

	switch cfg.Listener {
	case config.ListenerPQ:
		pqListener, err := postgresengine.NewPQListener(cfg.DSN, cfg.NotifyChannel, logger)
		if err != nil {
			return nil, nil, err
		}

		listener = pqListener

	case config.ListenerPoll:
		listener = eventstore.NewPollingListener(cfg.PollInterval)
	}

	return store, listener, nil
}
