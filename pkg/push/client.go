package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client sends device push notifications through an FCM-style HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a push provider client. Returns ErrInvalidConfig
// when the server key is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ServerKey == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://fcm.googleapis.com/fcm/send"
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

// Response is the provider acknowledgement for a single device send.
type Response struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type fcmPayload struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// Send pushes one notification to a single device token.
func (c *Client) Send(ctx context.Context, token, title, body string, data map[string]string) (Response, error) {
	payload, err := json.Marshal(fcmPayload{
		To: token,
		Notification: fcmNotification{
			Title: title,
			Body:  body,
			Sound: "default",
		},
		Data: data,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Authorization", "key="+c.cfg.ServerKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("%w: http %d", ErrSendFailed, resp.StatusCode)
	}

	var ack fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return Response{}, fmt.Errorf("%w: decode response: %w", ErrSendFailed, err)
	}

	if ack.Success == 1 && len(ack.Results) > 0 {
		return Response{Success: true, MessageID: ack.Results[0].MessageID}, nil
	}
	reason := "unknown error"
	if len(ack.Results) > 0 && ack.Results[0].Error != "" {
		reason = ack.Results[0].Error
	}
	return Response{Success: false, Error: reason}, nil
}
