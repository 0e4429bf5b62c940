package notification

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
// Schema is managed by the goose migrations under internal/db/migrations.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a Postgres notification storage on top of a pgx pool.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

const notificationColumns = `id, user_id, title, message, channel, priority,
	event_type, related_entity_id, status, scheduled_for, sent_at,
	delivered_at, read_at, failure_reason, delivery_details, metadata,
	created_at`

func (s *PgStorage) Create(ctx context.Context, n *Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	details, err := marshalJSON(n.DeliveryDetails)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(n.Metadata)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		n.ID, n.UserID, n.Title, n.Message, n.Channel, n.Priority,
		nullable(n.EventType), nullable(n.RelatedEntityID), n.Status,
		n.ScheduledFor, n.SentAt, n.DeliveredAt, n.ReadAt,
		nullable(n.FailureReason), details, metadata, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PgStorage) Get(ctx context.Context, id string) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

func (s *PgStorage) Update(ctx context.Context, n *Notification) error {
	details, err := marshalJSON(n.DeliveryDetails)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET
			status = $2, scheduled_for = $3, sent_at = $4, delivered_at = $5,
			read_at = $6, failure_reason = $7, delivery_details = $8
		WHERE id = $1`,
		n.ID, n.Status, n.ScheduledFor, n.SentAt, n.DeliveredAt, n.ReadAt,
		nullable(n.FailureReason), details,
	)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStorage) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if opts.OnlyUnread {
		q += ` AND read_at IS NULL AND status <> 'failed'`
	}
	q += ` ORDER BY created_at DESC`
	args := []any{userID}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		q += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (s *PgStorage) ListDue(ctx context.Context, now time.Time) ([]Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE status = 'pending' AND scheduled_for <= $1
		ORDER BY scheduled_for`, now)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (s *PgStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE user_id = $1 AND read_at IS NULL AND status <> 'failed'`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func collectNotifications(rows pgx.Rows) ([]Notification, error) {
	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		n               Notification
		eventType       *string
		relatedEntityID *string
		failureReason   *string
		details         []byte
		metadata        []byte
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Channel, &n.Priority,
		&eventType, &relatedEntityID, &n.Status, &n.ScheduledFor,
		&n.SentAt, &n.DeliveredAt, &n.ReadAt, &failureReason, &details,
		&metadata, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	if eventType != nil {
		n.EventType = *eventType
	}
	if relatedEntityID != nil {
		n.RelatedEntityID = *relatedEntityID
	}
	if failureReason != nil {
		n.FailureReason = *failureReason
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &n.DeliveryDetails); err != nil {
			return nil, fmt.Errorf("decode delivery details: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &n, nil
}

func marshalJSON(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return b, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
