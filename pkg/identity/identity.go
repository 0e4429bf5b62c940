package identity

import "context"

// User is the contact profile the dispatch engine needs to deliver
// notifications. It is owned by the surrounding application; the engine
// only reads it.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`
	Language       string `json:"language,omitempty"` // "ar" or "en", defaults to "ar"
	Active         bool   `json:"active"`
}

// Directory is the consumed user-lookup capability.
type Directory interface {
	// GetUser resolves a user by ID. Returns ErrUserNotFound when the
	// user does not exist.
	GetUser(ctx context.Context, userID string) (*User, error)
}

// EntitySummarizer optionally renders a human-readable summary of a
// related business entity (e.g. an insurance claim) for inclusion in
// outbound messages. Implementations may return an empty string when
// the entity cannot be resolved.
type EntitySummarizer interface {
	RenderEntitySummary(ctx context.Context, entityID string) string
}
