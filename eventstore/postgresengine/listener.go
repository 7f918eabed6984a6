package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

const (
	pqMinReconnectInterval = 10 * time.Second
	pqMaxReconnectInterval = time.Minute
	pqPingInterval         = 90 * time.Second
)

// PGXListener implements eventstore.AppendListener with LISTEN on a dedicated pgx connection.
type PGXListener struct {
	pool    *pgxpool.Pool
	channel string
	logger  eventstore.ContextualLogger
}

// NewPGXListener creates a listener for the EventStore's notify channel, logger may be nil.
func NewPGXListener(pool *pgxpool.Pool, channel string, logger eventstore.ContextualLogger) (*PGXListener, error) {
	if pool == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	if !isValidIdentifier(channel) {
		return nil, eventstore.ErrInvalidIdentifier
	}

	return &PGXListener{pool: pool, channel: channel, logger: logger}, nil
}

// Listen takes a connection out of the pool for the lifetime of ctx.
// The signal channel closes when ctx is done or the connection breaks.
func (l *PGXListener) Listen(ctx context.Context) (<-chan struct{}, error) {
	pooled, acquireErr := l.pool.Acquire(ctx)
	if acquireErr != nil {
		return nil, errors.Join(eventstore.ErrListeningFailed, acquireErr)
	}

	conn := pooled.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())

		return nil, errors.Join(eventstore.ErrListeningFailed, err)
	}

	l.log(ctx, logMsgListenerStarted)
	signals := make(chan struct{}, 1)

	go func() {
		defer close(signals)
		defer func() { _ = conn.Close(context.Background()) }()

		for {
			if _, err := conn.WaitForNotification(ctx); err != nil {
				if ctx.Err() == nil && l.logger != nil {
					l.logger.WarnContext(ctx, logMsgListenerStopped, logAttrChannel, l.channel, logAttrError, err.Error())
				}

				return
			}

			eventstore.Signal(signals)
		}
	}()

	return signals, nil
}

func (l *PGXListener) log(ctx context.Context, msg string) {
	if l.logger != nil {
		l.logger.InfoContext(ctx, msg, logAttrChannel, l.channel)
	}
}

// PQListener implements eventstore.AppendListener on top of lib/pq's reconnecting Listener.
//
// A reconnect is reported as a signal too, notifications sent while disconnected are lost
// and the receiver has to catch up by querying.
type PQListener struct {
	dsn     string
	channel string
	logger  eventstore.ContextualLogger
}

// NewPQListener creates a listener that opens its own connection from dsn, logger may be nil.
func NewPQListener(dsn string, channel string, logger eventstore.ContextualLogger) (*PQListener, error) {
	if dsn == "" {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	if !isValidIdentifier(channel) {
		return nil, eventstore.ErrInvalidIdentifier
	}

	return &PQListener{dsn: dsn, channel: channel, logger: logger}, nil
}

// Listen opens the pq.Listener and forwards its notifications until ctx is done.
func (l *PQListener) Listen(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(l.dsn, pqMinReconnectInterval, pqMaxReconnectInterval, func(_ pq.ListenerEventType, err error) {
		if err != nil && l.logger != nil {
			l.logger.WarnContext(ctx, logMsgListenerStopped, logAttrChannel, l.channel, logAttrError, err.Error())
		}
	})

	if err := listener.Listen(l.channel); err != nil {
		_ = listener.Close()

		return nil, errors.Join(eventstore.ErrListeningFailed, err)
	}

	if l.logger != nil {
		l.logger.InfoContext(ctx, logMsgListenerStarted, logAttrChannel, l.channel)
	}

	signals := make(chan struct{}, 1)

	go func() {
		defer close(signals)
		defer func() { _ = listener.Close() }()

		ticker := time.NewTicker(pqPingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case _, ok := <-listener.Notify:
				if !ok {
					return
				}

				// a nil notification means the connection was re-established
				eventstore.Signal(signals)

			case <-ticker.C:
				if err := listener.Ping(); err != nil && l.logger != nil {
					l.logger.WarnContext(ctx, logMsgListenerStopped, logAttrChannel, l.channel, logAttrError, err.Error())
				}
			}
		}
	}()

	return signals, nil
}
