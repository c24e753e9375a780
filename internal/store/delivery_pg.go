package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgDeliveryStore implements DeliveryStore on PostgreSQL.
type PgDeliveryStore struct {
	db *pgxpool.Pool
}

func NewPgDeliveryStore(db *pgxpool.Pool) *PgDeliveryStore {
	return &PgDeliveryStore{db: db}
}

func (s *PgDeliveryStore) Record(ctx context.Context, d *Delivery) error {
	query := `
		INSERT INTO webhook_deliveries (event_id, event_type, status, retry_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query, d.EventID, d.EventType, d.Status, d.RetryCount).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	return nil
}

func (s *PgDeliveryStore) UpdateStatus(ctx context.Context, eventID string, status DeliveryStatus, retryCount int, errMsg string) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $2, retry_count = $3, error = NULLIF($4, ''), updated_at = NOW()
		WHERE event_id = $1
	`

	tag, err := s.db.Exec(ctx, query, eventID, status, retryCount, errMsg)
	if err != nil {
		return fmt.Errorf("failed to update webhook delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

func (s *PgDeliveryStore) ListUnresolved(ctx context.Context, limit int) ([]Delivery, error) {
	query := `
		SELECT id, event_id, event_type, status, retry_count, error, created_at, updated_at
		FROM webhook_deliveries
		WHERE status IN ('retrying', 'failed')
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.EventID, &d.EventType, &d.Status, &d.RetryCount, &d.Error, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan webhook delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhook deliveries: %w", err)
	}

	return deliveries, nil
}
