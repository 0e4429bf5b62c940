package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claimdesk/notifier/pkg/pg"
)

// PgDirectory resolves users from the application's users table. The
// engine only reads contact columns; user management lives elsewhere.
type PgDirectory struct {
	pool *pgxpool.Pool
}

// NewPgDirectory creates a PostgreSQL-backed user directory.
func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

func (d *PgDirectory) GetUser(ctx context.Context, userID string) (*User, error) {
	var u User
	err := d.pool.QueryRow(ctx, `
		SELECT id, email, coalesce(phone, ''), coalesce(whatsapp_number, ''),
			coalesce(language, 'ar'), active
		FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &u.Phone, &u.WhatsAppNumber, &u.Language, &u.Active)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user %q: %w", userID, err)
	}
	return &u, nil
}
