package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claimdesk/notifier/pkg/notification"
)

// PgStorage is a Postgres-backed implementation of the Storage interface.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a Postgres preference storage on top of a pgx pool.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

const preferenceColumns = `user_id, email_enabled, sms_enabled, push_enabled,
	whatsapp_enabled, in_app_enabled, quiet_hours_enabled, quiet_hours_start,
	quiet_hours_end, push_token, whatsapp_number, event_overrides,
	created_at, updated_at`

// GetOrCreate inserts the defaults with ON CONFLICT DO NOTHING and then
// reads the row back, so concurrent first resolutions for the same user
// cannot create duplicates.
func (s *PgStorage) GetOrCreate(ctx context.Context, userID string) (*Preference, error) {
	def := NewPreference(userID)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notification_preferences (`+preferenceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (user_id) DO NOTHING`,
		def.UserID, def.EmailEnabled, def.SMSEnabled, def.PushEnabled,
		def.WhatsAppEnabled, def.InAppEnabled, def.QuietHoursEnabled,
		nullable(def.QuietHoursStart), nullable(def.QuietHoursEnd),
		nullable(def.PushToken), nullable(def.WhatsAppNumber), nil,
		def.CreatedAt, def.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert preference defaults: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+preferenceColumns+`
		FROM notification_preferences WHERE user_id = $1`, userID)
	return scanPreference(row)
}

func (s *PgStorage) Update(ctx context.Context, p *Preference) error {
	overrides, err := marshalOverrides(p.EventOverrides)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE notification_preferences SET
			email_enabled = $2, sms_enabled = $3, push_enabled = $4,
			whatsapp_enabled = $5, in_app_enabled = $6,
			quiet_hours_enabled = $7, quiet_hours_start = $8,
			quiet_hours_end = $9, push_token = $10, whatsapp_number = $11,
			event_overrides = $12, updated_at = now()
		WHERE user_id = $1`,
		p.UserID, p.EmailEnabled, p.SMSEnabled, p.PushEnabled,
		p.WhatsAppEnabled, p.InAppEnabled, p.QuietHoursEnabled,
		nullable(p.QuietHoursStart), nullable(p.QuietHoursEnd),
		nullable(p.PushToken), nullable(p.WhatsAppNumber), overrides,
	)
	if err != nil {
		return fmt.Errorf("update preference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPreference(row pgx.Row) (*Preference, error) {
	var (
		p              Preference
		start, end     *string
		token, waPhone *string
		overrides      []byte
	)
	err := row.Scan(
		&p.UserID, &p.EmailEnabled, &p.SMSEnabled, &p.PushEnabled,
		&p.WhatsAppEnabled, &p.InAppEnabled, &p.QuietHoursEnabled,
		&start, &end, &token, &waPhone, &overrides, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan preference: %w", err)
	}
	if start != nil {
		p.QuietHoursStart = *start
	}
	if end != nil {
		p.QuietHoursEnd = *end
	}
	if token != nil {
		p.PushToken = *token
	}
	if waPhone != nil {
		p.WhatsAppNumber = *waPhone
	}
	if len(overrides) > 0 {
		if err := json.Unmarshal(overrides, &p.EventOverrides); err != nil {
			return nil, fmt.Errorf("decode event overrides: %w", err)
		}
	}
	return &p, nil
}

func marshalOverrides(overrides map[string]map[notification.Channel]bool) ([]byte, error) {
	if overrides == nil {
		return nil, nil
	}
	b, err := json.Marshal(overrides)
	if err != nil {
		return nil, fmt.Errorf("encode event overrides: %w", err)
	}
	return b, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
