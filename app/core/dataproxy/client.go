package dataproxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Collections the widgets persist through the proxy.
const (
	CollectionSchedules = "schedules"
	CollectionKanban    = "kanban-tasks"
	CollectionAlarms    = "manual-alarms"
)

// Client talks to the per-user document store behind the data proxy:
// GET /data/{collection}, POST /data/{collection} (id-field upsert),
// DELETE /data/{collection}/{id}. Documents are raw JSON; callers decode
// into their own shapes.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// List fetches every document in a collection. The result is the raw JSON
// array body; iterate with gjson.
func (c *Client) List(ctx context.Context, collection string) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, c.collectionURL(collection), nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return nil, fmt.Errorf("list %s: response is not a JSON array", collection)
	}
	return body, nil
}

// Upsert writes one document. A document carrying an "id" field replaces the
// stored version; without one the store assigns an id, which is returned
// either way.
func (c *Client) Upsert(ctx context.Context, collection string, doc []byte) (string, error) {
	body, err := c.do(ctx, http.MethodPost, c.collectionURL(collection), doc)
	if err != nil {
		return "", fmt.Errorf("upsert %s: %w", collection, err)
	}
	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		id = gjson.GetBytes(body, "data.id").String()
	}
	return id, nil
}

// UpsertWithID stamps id onto the document before writing, guaranteeing an
// update rather than an insert.
func (c *Client) UpsertWithID(ctx context.Context, collection, id string, doc []byte) error {
	stamped, err := sjson.SetBytes(doc, "id", id)
	if err != nil {
		return fmt.Errorf("stamp id on %s doc: %w", collection, err)
	}
	_, err = c.Upsert(ctx, collection, stamped)
	return err
}

// Delete removes one document by id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	target := c.collectionURL(collection) + "/" + url.PathEscape(id)
	if _, err := c.do(ctx, http.MethodDelete, target, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) collectionURL(collection string) string {
	return c.baseURL + "/" + url.PathEscape(collection)
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := gjson.GetBytes(data, "detail").String()
		if detail == "" {
			detail = strings.TrimSpace(string(data))
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	}
	return data, nil
}
