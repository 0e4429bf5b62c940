package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStorage is a Postgres-backed implementation of the Storage interface.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a Postgres batch storage on top of a pgx pool.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

const batchColumns = `id, channel, event_type, recipients, context, status,
	success_count, failure_count, failure_reason, scheduled_for,
	processed_at, created_at`

func (s *PgStorage) Create(ctx context.Context, b *Batch) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	recipients, err := json.Marshal(b.Recipients)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}
	var contextData []byte
	if b.Context != nil {
		if contextData, err = json.Marshal(b.Context); err != nil {
			return fmt.Errorf("encode context: %w", err)
		}
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO notification_queue (`+batchColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		b.ID, b.Channel, nullable(b.EventType), recipients, contextData,
		b.Status, b.SuccessCount, b.FailureCount, nullable(b.FailureReason),
		b.ScheduledFor, b.ProcessedAt, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (s *PgStorage) Get(ctx context.Context, id string) (*Batch, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+batchColumns+` FROM notification_queue WHERE id = $1`, id)
	return scanBatch(row)
}

func (s *PgStorage) Update(ctx context.Context, b *Batch) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notification_queue SET
			status = $2, success_count = $3, failure_count = $4,
			failure_reason = $5, processed_at = $6
		WHERE id = $1`,
		b.ID, b.Status, b.SuccessCount, b.FailureCount,
		nullable(b.FailureReason), b.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStorage) ListDue(ctx context.Context, now time.Time, limit int) ([]Batch, error) {
	q := `SELECT ` + batchColumns + `
		FROM notification_queue
		WHERE status = 'pending' AND scheduled_for <= $1
		ORDER BY scheduled_for`
	args := []any{now}
	if limit > 0 {
		args = append(args, limit)
		q += ` LIMIT $2`
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list due batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBatch(row pgx.Row) (*Batch, error) {
	var (
		b                        Batch
		eventType, failureReason *string
		recipients, contextData  []byte
	)
	err := row.Scan(
		&b.ID, &b.Channel, &eventType, &recipients, &contextData, &b.Status,
		&b.SuccessCount, &b.FailureCount, &failureReason, &b.ScheduledFor,
		&b.ProcessedAt, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	if eventType != nil {
		b.EventType = *eventType
	}
	if failureReason != nil {
		b.FailureReason = *failureReason
	}
	if len(recipients) > 0 {
		if err := json.Unmarshal(recipients, &b.Recipients); err != nil {
			return nil, fmt.Errorf("decode recipients: %w", err)
		}
	}
	if len(contextData) > 0 {
		if err := json.Unmarshal(contextData, &b.Context); err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
	}
	return &b, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
