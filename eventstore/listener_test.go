package eventstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

func Test_PollingListener_SignalsAndClosesOnCancel(t *testing.T) {
	// setup
	ctx, cancel := context.WithCancel(context.Background())
	listener := eventstore.NewPollingListener(5 * time.Millisecond)

	// act
	signals, err := listener.Listen(ctx)
	require.NoError(t, err)

	// assert
	select {
	case <-signals:
	case <-time.After(time.Second):
		t.Fatal("expected a signal")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-signals:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func Test_Signal_Coalesces(t *testing.T) {
	// arrange
	signals := make(chan struct{}, 1)

	// act
	eventstore.Signal(signals)
	eventstore.Signal(signals)

	// assert
	assert.Len(t, signals, 1)
}
