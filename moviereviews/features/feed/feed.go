package feed

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Feed is one open reviewsForMovie sequence. Close it when done.
type Feed struct {
	controller *Controller
	movieID    core.MovieID
	viewer     core.Viewer
	ctx        context.Context
	cancel     context.CancelFunc

	mu           sync.Mutex
	current      Snapshot
	primed       bool
	updates      chan Snapshot
	subscription *reviewstore.Subscription
	attachedGen  uint64
	publishedGen uint64
	nextGen      uint64
	closed       bool
	closeOnce    sync.Once
}

func newFeed(ctx context.Context, controller *Controller, movieID core.MovieID, viewer core.Viewer) *Feed {
	feedCtx, cancel := context.WithCancel(ctx)

	return &Feed{
		controller: controller,
		movieID:    movieID,
		viewer:     viewer,
		ctx:        feedCtx,
		cancel:     cancel,
		updates:    make(chan Snapshot, 1),
	}
}

// Current returns the latest snapshot.
func (f *Feed) Current() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

// Updates delivers every snapshot after the first. A consumer that falls behind only sees the
// latest one. The channel is closed by Close.
func (f *Feed) Updates() <-chan Snapshot {
	return f.updates
}

// Done is closed when the feed is closed or the context it was opened with ends.
func (f *Feed) Done() <-chan struct{} {
	return f.ctx.Done()
}

// Close stops the subscription and closes Updates. It is idempotent.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		subscription := f.subscription
		f.subscription = nil
		close(f.updates)
		f.mu.Unlock()

		if subscription != nil {
			subscription.Unsubscribe()
		}

		f.cancel()
		f.controller.forget(f)
	})
}

// subscribe opens a new subscription and replaces the current one once it delivered its first
// snapshot. On failure the previous subscription stays in place.
func (f *Feed) subscribe(store ReviewStore) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.nextGen++
	gen := f.nextGen
	f.mu.Unlock()

	subscription, err := store.Subscribe(f.ctx, f.movieID, func(reviews []core.Review) {
		f.publish(gen, reviews)
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.closed || gen < f.attachedGen {
		f.mu.Unlock()
		subscription.Unsubscribe()

		return nil
	}

	previous := f.subscription
	f.subscription = subscription
	f.attachedGen = gen
	f.mu.Unlock()

	if previous != nil {
		previous.Unsubscribe()
	}

	return nil
}

// publish stores the snapshot built from reviews and offers it on Updates. Deliveries of a
// subscription older than one that already published are dropped.
func (f *Feed) publish(gen uint64, reviews []core.Review) {
	snapshot := BuildSnapshot(f.movieID, reviews, f.viewer)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen < f.publishedGen {
		return
	}

	f.publishedGen = gen
	f.current = snapshot

	if !f.primed {
		f.primed = true
		return
	}

	select {
	case f.updates <- snapshot:
	default:
		select {
		case <-f.updates:
		default:
		}

		f.updates <- snapshot
	}
}
