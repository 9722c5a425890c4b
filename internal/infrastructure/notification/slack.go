// Package notification provides the Slack webhook client and the
// fire-and-forget dispatcher feeding it from domain events.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one Slack incoming-webhook payload
type Message struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// Sender posts a single message, best effort
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SlackClient posts messages to a Slack incoming webhook
type SlackClient struct {
	webhookURL string
	channel    string
	httpClient *http.Client
}

// NewSlackClient creates a webhook client
func NewSlackClient(webhookURL, channel string, timeout time.Duration) (*SlackClient, error) {
	if webhookURL == "" {
		return nil, errors.New("slack webhook URL is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SlackClient{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Send posts the message to the webhook
func (c *SlackClient) Send(ctx context.Context, msg Message) error {
	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Ensure SlackClient implements Sender
var _ Sender = (*SlackClient)(nil)
