package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client sends text messages through an HTTP SMS gateway.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates an SMS gateway client. Returns ErrInvalidConfig when
// the gateway credentials are missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIURL == "" || cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, ErrInvalidConfig
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

// messageResponse is the provider's create-message response envelope.
type messageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // error description on failure
}

// CreateMessage submits one outbound SMS and returns the provider message
// SID. The provider enforces its own delivery semantics; no delivery
// receipt is modeled here.
func (c *Client) CreateMessage(ctx context.Context, body, from, to string) (string, error) {
	form := url.Values{}
	form.Set("Body", body)
	form.Set("From", from)
	form.Set("To", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrSendFailed, err)
	}

	var msg messageResponse
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrSendFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := msg.Message
		if reason == "" {
			reason = resp.Status
		}
		return "", fmt.Errorf("%w: %s", ErrSendFailed, reason)
	}
	if msg.SID == "" {
		return "", fmt.Errorf("%w: provider returned no message sid", ErrSendFailed)
	}
	return msg.SID, nil
}

// From returns the configured sender number.
func (c *Client) From() string {
	return c.cfg.FromNumber
}
