package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/models"
)

const (
	reviewEventsTable   = "review_events"
	publishAsyncTimeout = 5 * time.Second
)

type insertFunc func(table string, row interface{}) error

// RealtimeClient records review events in review_events through PostgREST.
// The dashboard subscribes to inserts on that table via Supabase Realtime.
type RealtimeClient struct {
	insert insertFunc
	log    logger.Logger
}

func NewRealtimeClient(client *supabase.Client, log logger.Logger) *RealtimeClient {
	return &RealtimeClient{
		insert: func(table string, row interface{}) error {
			_, _, err := client.From(table).Insert(row, false, "", "minimal", "").Execute()
			return err
		},
		log: log,
	}
}

// NewRealtimeClientWithInsert is used by tests to capture inserted rows.
func NewRealtimeClientWithInsert(insert func(table string, row interface{}) error, log logger.Logger) *RealtimeClient {
	return &RealtimeClient{insert: insert, log: log}
}

// Publish inserts the event, giving up when ctx is done first.
func (r *RealtimeClient) Publish(ctx context.Context, event models.ReviewEvent) error {
	done := make(chan error, 1)
	go func() {
		done <- r.insert(reviewEventsTable, event)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAsync publishes on its own goroutine. Failures are only logged.
func (r *RealtimeClient) PublishAsync(event models.ReviewEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishAsyncTimeout)
		defer cancel()

		if err := r.Publish(ctx, event); err != nil {
			r.log.Warn("Failed to publish review event",
				logger.String("order_id", event.OrderID.String()),
				logger.String("type", string(event.Type)),
				logger.Error(err),
			)
		}
	}()
}
