package googleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoAccessToken is returned when no Google OAuth token is available.
// Handlers treat it as a soft no-op: the local mutation stands, the remote
// write is skipped with a warning.
var ErrNoAccessToken = errors.New("google access token not available")

// TokenProvider yields the current user OAuth access token, or "" when the
// user has not linked a Google account.
type TokenProvider func() string

// Client calls the task/calendar service endpoints. Every call is a POST
// with the access token embedded in the body, mirroring how the service
// authenticates against the upstream Google APIs.
type Client struct {
	baseURL string
	token   TokenProvider
	http    *http.Client
}

func NewClient(baseURL string, token TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// HasToken reports whether a remote write would even be attempted.
func (c *Client) HasToken() bool {
	return c.token() != ""
}

func (c *Client) post(ctx context.Context, path string, payload map[string]interface{}, out interface{}) error {
	tok := c.token()
	if tok == "" {
		return ErrNoAccessToken
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["access_token"] = tok

	return c.postRaw(ctx, path, payload, out)
}

func (c *Client) postRaw(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(data, &detail)
		if detail.Detail == "" {
			detail.Detail = strings.TrimSpace(string(data))
		}
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, detail.Detail)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", path, err)
		}
	}
	return nil
}
