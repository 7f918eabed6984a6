package reviewstore

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Loader reads every raw record under a movie.
type Loader func(ctx context.Context, movieID core.MovieID) ([]RawRecord, error)

// Hub implements Backend.SubscribeReviews for backends that can load a movie's records and learn
// that a movie changed. Every subscriber has its own goroutine and a one-slot mailbox, so a burst
// of notifications collapses into one reload and a slow subscriber never blocks Notify.
type Hub struct {
	load   Loader
	logger eventstore.ContextualLogger

	mu          sync.Mutex
	subscribers map[core.MovieID]map[uint64]*hubSubscriber
	nextID      uint64
}

type hubSubscriber struct {
	movieID  core.MovieID
	onChange func([]RawRecord)
	mailbox  chan struct{}
	ctx      context.Context
}

// NewHub creates a Hub; logger may be nil.
func NewHub(load Loader, logger eventstore.ContextualLogger) *Hub {
	return &Hub{
		load:        load,
		logger:      logger,
		subscribers: make(map[core.MovieID]map[uint64]*hubSubscriber),
	}
}

// Subscribe delivers the current records synchronously, then one reload per coalesced notification
// until the returned func is called or ctx is done.
func (h *Hub) Subscribe(ctx context.Context, movieID core.MovieID, onChange func([]RawRecord)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	sub := &hubSubscriber{
		movieID:  movieID,
		onChange: onChange,
		mailbox:  make(chan struct{}, 1),
		ctx:      subCtx,
	}

	// Registered before the initial load, so a change racing with it triggers a reload.
	id := h.register(sub)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.unregister(movieID, id)
			cancel()
		})
	}

	records, err := h.load(subCtx, movieID)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	onChange(records)

	go h.run(sub, unsubscribe)

	return unsubscribe, nil
}

// Notify schedules a reload for every subscriber of movieID.
func (h *Hub) Notify(movieID core.MovieID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subscribers[movieID] {
		eventstore.Signal(sub.mailbox)
	}
}

// NotifyAll schedules a reload for every subscriber.
func (h *Hub) NotifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.subscribers {
		for _, sub := range subs {
			eventstore.Signal(sub.mailbox)
		}
	}
}

// SubscriberCount returns the number of live subscribers of movieID.
func (h *Hub) SubscriberCount(movieID core.MovieID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers[movieID])
}

func (h *Hub) register(sub *hubSubscriber) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	if h.subscribers[sub.movieID] == nil {
		h.subscribers[sub.movieID] = make(map[uint64]*hubSubscriber)
	}

	h.subscribers[sub.movieID][id] = sub

	return id
}

func (h *Hub) unregister(movieID core.MovieID, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subscribers[movieID], id)

	if len(h.subscribers[movieID]) == 0 {
		delete(h.subscribers, movieID)
	}
}

func (h *Hub) run(sub *hubSubscriber, unsubscribe func()) {
	defer unsubscribe()

	for {
		select {
		case <-sub.ctx.Done():
			return

		case <-sub.mailbox:
			records, err := h.load(sub.ctx, sub.movieID)
			if sub.ctx.Err() != nil {
				return
			}

			if err != nil {
				if h.logger != nil {
					h.logger.WarnContext(sub.ctx, logMsgReloadFailed,
						logAttrMovieID, sub.movieID.String(),
						logAttrError, err.Error())
				}

				continue
			}

			sub.onChange(records)
		}
	}
}
