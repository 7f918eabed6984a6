package reviewstore

import (
	"sync"
	"sync/atomic"
)

// Subscription is the handle of a live review subscription.
type Subscription struct {
	alive       atomic.Bool
	once        sync.Once
	mu          sync.Mutex
	unsubscribe func()
}

func newSubscription() *Subscription {
	s := &Subscription{}
	s.alive.Store(true)

	return s
}

// Unsubscribe stops further deliveries. It is safe to call more than once and from any goroutine,
// including from inside the callback.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.alive.Store(false)

		s.mu.Lock()
		unsubscribe := s.unsubscribe
		s.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
	})
}

// Active reports whether deliveries may still happen.
func (s *Subscription) Active() bool {
	return s.alive.Load()
}

func (s *Subscription) attach(unsubscribe func()) {
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	// Unsubscribe ran before the backend handle was known.
	if !s.alive.Load() {
		unsubscribe()
	}
}
