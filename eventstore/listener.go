package eventstore

import (
	"context"
	"time"
)

// AppendListener signals that new events were appended to the store.
//
// The returned channel carries coalesced signals with no payload: a receiver must re-query to learn what changed.
// It is closed when ctx is done or when the underlying connection fails, in which case the caller may Listen again.
type AppendListener interface {
	Listen(ctx context.Context) (<-chan struct{}, error)
}

// PollingListener is an AppendListener for engines without a native notification mechanism.
// It emits a signal on every tick.
type PollingListener struct {
	interval time.Duration
}

// NewPollingListener creates a PollingListener, a non-positive interval falls back to one second.
func NewPollingListener(interval time.Duration) PollingListener {
	if interval <= 0 {
		interval = time.Second
	}

	return PollingListener{interval: interval}
}

// Listen starts the ticker goroutine.
func (l PollingListener) Listen(ctx context.Context) (<-chan struct{}, error) {
	signals := make(chan struct{}, 1)

	go func() {
		defer close(signals)

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				Signal(signals)
			}
		}
	}()

	return signals, nil
}

// Signal does a non-blocking send on a buffered signal channel, coalescing with a pending signal.
func Signal(signals chan<- struct{}) {
	select {
	case signals <- struct{}{}:
	default:
	}
}
