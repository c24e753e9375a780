package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prospectly/billing-service/pkg/pg"
)

// PgEventStore implements EventStore on PostgreSQL. The unique constraint on
// event_id is what makes webhook processing idempotent under at-least-once
// delivery: concurrent or repeated inserts of the same event collapse into
// one row without application-level locking.
type PgEventStore struct {
	db *pgxpool.Pool
}

func NewPgEventStore(db *pgxpool.Pool) *PgEventStore {
	return &PgEventStore{db: db}
}

func (s *PgEventStore) Insert(ctx context.Context, ev *BillingEvent) (bool, bool, error) {
	query := `
		INSERT INTO billing_events (event_id, event_type, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id, created_at
	`

	err := s.db.QueryRow(ctx, query, ev.EventID, ev.EventType, ev.Payload).Scan(&ev.ID, &ev.CreatedAt)
	if err == nil {
		return true, false, nil
	}
	if !pg.IsNotFoundError(err) {
		return false, false, fmt.Errorf("failed to insert billing event: %w", err)
	}

	// Conflict: the event was already recorded. Report its processed state so
	// the caller can decide whether a redelivery still needs handling.
	var processed bool
	err = s.db.QueryRow(ctx, `SELECT processed FROM billing_events WHERE event_id = $1`, ev.EventID).Scan(&processed)
	if err != nil {
		return false, false, fmt.Errorf("failed to read existing billing event: %w", err)
	}

	return false, processed, nil
}

func (s *PgEventStore) MarkProcessed(ctx context.Context, eventID string) error {
	query := `
		UPDATE billing_events
		SET processed = TRUE, processed_at = NOW(), error = NULL
		WHERE event_id = $1
	`

	tag, err := s.db.Exec(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (s *PgEventStore) MarkFailed(ctx context.Context, eventID string, errMsg string) error {
	query := `
		UPDATE billing_events
		SET processed = FALSE, error = $2
		WHERE event_id = $1
	`

	tag, err := s.db.Exec(ctx, query, eventID, errMsg)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (s *PgEventStore) SetRetryCount(ctx context.Context, eventID string, count int) error {
	query := `UPDATE billing_events SET retry_count = $2 WHERE event_id = $1`

	tag, err := s.db.Exec(ctx, query, eventID, count)
	if err != nil {
		return fmt.Errorf("failed to update event retry count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
