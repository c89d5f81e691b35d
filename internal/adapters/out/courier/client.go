// Package courier is the HTTP client of the external courier platform.
package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ordertracker/internal/core/ports"
)

const maxErrorBody = 512

// Client implements ports.CourierClient against the platform's REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client. The timeout bounds a single request; callers
// bound the whole retry loop with their context.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type pushStatusRequest struct {
	Status string `json:"status"`
}

// PushStatus reports the shipment's status. A 4xx answer other than 408 and
// 429 wraps ports.ErrCourierRejected; other failures are worth retrying.
func (c *Client) PushStatus(ctx context.Context, externalOrderRef, externalStatusCode string) error {
	body, err := json.Marshal(pushStatusRequest{Status: externalStatusCode})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/v1/shipments/" + url.PathEscape(externalOrderRef) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if isRejection(resp.StatusCode) {
		return fmt.Errorf("%d: %w", resp.StatusCode, ports.ErrCourierRejected)
	}
	return fmt.Errorf("request failed with %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func isRejection(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}
