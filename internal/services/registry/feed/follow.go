package feed

import (
	"context"
	"fmt"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
)

// replayBatch bounds each journal read while catching up.
const replayBatch = 200

// Journal is the slice of the event log a follower reads.
type Journal interface {
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error)
}

// Follow sends every event after afterSeq to send: first from the journal,
// then from the live hub. Delivery is gap-free and in seq order. Follow
// returns when ctx ends, send fails, or the subscription is dropped.
func Follow(ctx context.Context, hub *Hub, journal Journal, afterSeq uint64, send func(event.Event) error) error {
	sub, err := hub.Subscribe()
	if err != nil {
		return err
	}
	defer sub.Close()

	last := afterSeq
	catchUp := func() error {
		for {
			batch, err := journal.ListEvents(ctx, last, replayBatch)
			if err != nil {
				return fmt.Errorf("replay events after %d: %w", last, err)
			}
			for _, evt := range batch {
				if err := send(evt); err != nil {
					return err
				}
				last = evt.Seq
			}
			if len(batch) < replayBatch {
				return nil
			}
		}
	}
	if err := catchUp(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Done():
			return sub.Err()
		case evt := <-sub.Events():
			if evt.Seq <= last {
				continue
			}
			if evt.Seq > last+1 {
				if err := catchUp(); err != nil {
					return err
				}
				if evt.Seq <= last {
					continue
				}
			}
			if err := send(evt); err != nil {
				return err
			}
			last = evt.Seq
		}
	}
}
