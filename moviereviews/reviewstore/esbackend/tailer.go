package esbackend

import (
	"context"
	"time"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Run notifies subscribers about review events appended by anyone, until ctx is done.
// Without a listener it returns immediately.
func (b *Backend) Run(ctx context.Context) error {
	if b.listener == nil {
		return nil
	}

	// Listening before reading the position means no append can fall between the two.
	signals, err := b.listener.Listen(ctx)
	if err != nil {
		return err
	}

	lastSeen, err := b.store.LatestSequenceNumber(ctx)
	if err != nil {
		return err
	}

	if b.logger != nil {
		b.logger.InfoContext(ctx, logMsgTailerStarted, logAttrSequenceNumber, lastSeen)
		defer b.logger.InfoContext(context.WithoutCancel(ctx), logMsgTailerStopped)
	}

	for {
		for range signals {
			lastSeen = b.catchUp(ctx, lastSeen)
		}

		if ctx.Err() != nil {
			return nil
		}

		if b.logger != nil {
			b.logger.WarnContext(ctx, logMsgListenerClosed)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.relistenDelay):
		}

		if signals, err = b.listener.Listen(ctx); err != nil {
			return err
		}

		// Events appended while no listener was active.
		lastSeen = b.catchUp(ctx, lastSeen)
	}
}

// catchUp notifies every movie with review events after lastSeen and returns the new position.
func (b *Backend) catchUp(ctx context.Context, lastSeen eventstore.MaxSequenceNumberUint) eventstore.MaxSequenceNumberUint {
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(reviewEventTypes[0], reviewEventTypes[1:]...).
		Finalize().
		WithSequenceNumberHigherThan(lastSeen)

	storableEvents, maxSequenceNumber, err := b.store.Query(eventstore.WithStrongConsistency(ctx), filter)
	if err != nil {
		if b.logger != nil && ctx.Err() == nil {
			b.logger.WarnContext(ctx, logMsgCatchUpFailed, logAttrError, err.Error())
		}

		return lastSeen
	}

	touched := make(map[core.MovieID]struct{})

	for _, storableEvent := range storableEvents {
		movieID, ok := movieIDOf(storableEvent)
		if !ok {
			b.logSkipped(ctx, storableEvent, errNoMovieID)
			continue
		}

		touched[movieID] = struct{}{}
	}

	for movieID := range touched {
		b.hub.Notify(movieID)
	}

	if b.logger != nil && len(touched) > 0 {
		b.logger.DebugContext(ctx, logMsgNotified,
			logAttrMovieCount, len(touched),
			logAttrSequenceNumber, maxSequenceNumber)
	}

	return max(lastSeen, maxSequenceNumber)
}
