package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client sends messages through the WhatsApp Business graph API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a WhatsApp Business client. Returns ErrInvalidConfig
// when the access token or phone number ID is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v17.0"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Response is the provider acknowledgement for one outbound message.
type Response struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type graphPayload struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             graphText `json:"text"`
}

type graphText struct {
	Body string `json:"body"`
}

type graphResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendMessage sends a plain text message to a phone number. The number
// is normalized by stripping +, spaces and dashes before submission.
func (c *Client) SendMessage(ctx context.Context, to, text string) (Response, error) {
	payload, err := json.Marshal(graphPayload{
		MessagingProduct: "whatsapp",
		To:               NormalizeNumber(to),
		Type:             "text",
		Text:             graphText{Body: text},
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	var ack graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return Response{}, fmt.Errorf("%w: decode response: %w", ErrSendFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		reason := ack.Error.Message
		if reason == "" {
			reason = resp.Status
		}
		return Response{Success: false, Error: reason}, nil
	}
	var messageID string
	if len(ack.Messages) > 0 {
		messageID = ack.Messages[0].ID
	}
	return Response{Success: true, MessageID: messageID}, nil
}

// NormalizeNumber strips formatting characters the graph API rejects.
func NormalizeNumber(number string) string {
	r := strings.NewReplacer("+", "", " ", "", "-", "")
	return r.Replace(number)
}
