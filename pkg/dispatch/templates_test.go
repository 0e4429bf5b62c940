package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/claimdesk/notifier/pkg/dispatch"
)

func TestTemplateFor(t *testing.T) {
	t.Parallel()

	t.Run("known event in both languages", func(t *testing.T) {
		t.Parallel()
		ar := dispatch.TemplateFor("claim_created", "ar")
		assert.Equal(t, "مطالبة جديدة", ar.Title)

		en := dispatch.TemplateFor("claim_created", "en")
		assert.Equal(t, "New Claim", en.Title)
	})

	t.Run("unknown language falls back to arabic", func(t *testing.T) {
		t.Parallel()
		got := dispatch.TemplateFor("claim_sent", "fr")
		assert.Equal(t, dispatch.TemplateFor("claim_sent", "ar"), got)
	})

	t.Run("unknown event falls back to generic", func(t *testing.T) {
		t.Parallel()
		got := dispatch.TemplateFor("policy_renewed", "en")
		assert.Equal(t, "Notification", got.Title)
	})
}

func TestFormatTemplate(t *testing.T) {
	t.Parallel()

	out := dispatch.FormatTemplate("Claim {claim_id} for {client_name}", map[string]any{
		"claim_id":    "c-7",
		"client_name": "Acme",
	})
	assert.Equal(t, "Claim c-7 for Acme", out)

	t.Run("unknown placeholders stay put", func(t *testing.T) {
		t.Parallel()
		out := dispatch.FormatTemplate("Claim {claim_id}", map[string]any{"other": 1})
		assert.Equal(t, "Claim {claim_id}", out)
	})

	t.Run("nil data is a no-op", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "as is", dispatch.FormatTemplate("as is", nil))
	})
}
