package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/notifier/pkg/whatsapp"
)

func TestNormalizeNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"+966 50-000-0001", "966500000001"},
		{"966500000001", "966500000001"},
		{"+1 (555) 000", "1(555)000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, whatsapp.NormalizeNumber(tt.in))
	}
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := whatsapp.NewClient(whatsapp.Config{})
	assert.ErrorIs(t, err, whatsapp.ErrInvalidConfig)

	_, err = whatsapp.NewClient(whatsapp.Config{AccessToken: "tok", PhoneNumberID: "123"})
	assert.NoError(t, err)
}

func TestSendMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success returns message id", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/123/messages", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "whatsapp", payload["messaging_product"])
			assert.Equal(t, "966500000001", payload["to"])

			w.Write([]byte(`{"messages":[{"id":"wamid.X"}]}`))
		}))
		defer srv.Close()

		c, err := whatsapp.NewClient(whatsapp.Config{
			AccessToken:   "tok",
			PhoneNumberID: "123",
			BaseURL:       srv.URL,
		})
		require.NoError(t, err)

		resp, err := c.SendMessage(ctx, "+966 50 000 0001", "*Hello*\n\nBody")
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "wamid.X", resp.MessageID)
	})

	t.Run("graph error is reported without transport error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"recipient not on whatsapp"}}`))
		}))
		defer srv.Close()

		c, err := whatsapp.NewClient(whatsapp.Config{
			AccessToken:   "tok",
			PhoneNumberID: "123",
			BaseURL:       srv.URL,
		})
		require.NoError(t, err)

		resp, err := c.SendMessage(ctx, "000", "text")
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "recipient not on whatsapp", resp.Error)
	})
}
