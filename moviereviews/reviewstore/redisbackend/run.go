package redisbackend

import (
	"context"
)

// Run relays change messages to the subscribers until ctx is done.
func (b *Backend) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close() //nolint:errcheck

	// Receive waits for the subscription confirmation, so a failing connection surfaces here.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}

		return err
	}

	if b.logger != nil {
		b.logger.InfoContext(ctx, logMsgSubscribed, logAttrChannel, b.channel)
	}

	// Messages published before the subscription was confirmed are lost.
	b.hub.NotifyAll()

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			movieID, valid := parseChangedMovie(msg.Payload)
			if !valid {
				if b.logger != nil {
					b.logger.WarnContext(ctx, logMsgBadChangeEvent, logAttrChannel, msg.Channel, logAttrPayload, msg.Payload)
				}

				continue
			}

			b.hub.Notify(movieID)
		}
	}
}
