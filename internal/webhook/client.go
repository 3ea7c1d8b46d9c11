package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/models"
)

// UserAgent identifies the watcher on outbound webhook requests.
const UserAgent = "n8n-webhook-watcher/1.0.0"

// maxBodyExcerpt bounds how much of a webhook response body is kept for logs.
const maxBodyExcerpt = 512

// Result describes a completed webhook request. A non-2xx status is still a
// completed request; only transport failures surface as errors from Send.
type Result struct {
	StatusCode int
	Body       string
	Duration   time.Duration
}

// Success reports whether the webhook answered with a 2xx status.
func (r *Result) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client POSTs workflow change payloads to the configured webhook.
type Client struct {
	URL     string
	Timeout time.Duration

	authHeaderName  string
	authHeaderValue string
	client          *http.Client
}

// NewClient creates a webhook client. authHeaderName and authHeaderValue are
// optional; when set, the header is added to every request.
func NewClient(url string, timeout time.Duration, authHeaderName, authHeaderValue string) *Client {
	return &Client{
		URL:             url,
		Timeout:         timeout,
		authHeaderName:  authHeaderName,
		authHeaderValue: authHeaderValue,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send POSTs the payload to the webhook URL. The returned Result is non-nil
// whenever the server answered, regardless of status code.
func (c *Client) Send(ctx context.Context, payload *models.WebhookPayload) (*Result, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if c.authHeaderName != "" {
		req.Header.Set(c.authHeaderName, c.authHeaderValue)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Duration:   time.Since(start),
	}, nil
}
