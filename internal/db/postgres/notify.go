package postgres

import (
	"context"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/appvote/portal/internal/db"
	"github.com/appvote/portal/internal/errors"
)

const notifyChannel = "contest_changes"

// Subscribe listens on the contest_changes channel and forwards one
// Notification per row-change event.  The payload is the table name set
// by the notify_contest_change trigger.  The stream closes when ctx is
// cancelled.
func (c *Client) Subscribe(ctx context.Context) (<-chan db.Notification, error) {
	const op errors.Op = "postgres.Subscribe"

	listener := pq.NewListener(c.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("postgres listener event %v: %v", ev, err)
		}
	})

	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return nil, errors.E(op, err, "error listening on contest channel", errors.KindDatabaseError)
	}

	out := make(chan db.Notification)

	go func() {
		defer close(out)
		defer func() { _ = listener.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					// Reconnect signal from the driver; callers treat
					// any event as "reload everything" so no payload
					// is needed.
					continue
				}
				select {
				case out <- db.Notification{Table: n.Extra}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
