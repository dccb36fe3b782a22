package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/env"
)

// Record is one row in the external record service. The service is opaque to
// us: rows are identified by an id and carry a free-form field map.
type Record struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// Client talks to the external record service that owns all persistent rows
// (stores, webhook registrations, notification events).
type Client struct {
	BaseURL string
	Token   string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		BaseURL: strings.TrimRight(env.GetEnv("RECORD_STORE_URL", ""), "/"),
		Token:   strings.TrimSpace(env.GetEnv("RECORD_STORE_TOKEN", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// List returns records of a table matching the given field filter. Filters
// are passed as filter[<field>]=<value> query parameters.
func (c *Client) List(ctx context.Context, table string, filter map[string]string) ([]Record, error) {
	u, err := c.tableURL(table, "")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, v := range filter {
		q.Set("filter["+k+"]", v)
	}
	u.RawQuery = q.Encode()

	var out struct {
		Records []Record `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, u.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, table, id string) (*Record, error) {
	u, err := c.tableURL(table, id)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := c.do(ctx, http.MethodGet, u.String(), nil, &rec); err != nil {
		var ue *apperrors.UpstreamError
		if errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("record %s/%s: %w", table, id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new record and returns it with the assigned id.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	u, err := c.tableURL(table, "")
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := c.do(ctx, http.MethodPost, u.String(), map[string]any{"fields": fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update patches the given fields of an existing record.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]any) (*Record, error) {
	u, err := c.tableURL(table, id)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := c.do(ctx, http.MethodPatch, u.String(), map[string]any{"fields": fields}, &rec); err != nil {
		var ue *apperrors.UpstreamError
		if errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("record %s/%s: %w", table, id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

func (c *Client) tableURL(table, id string) (*url.URL, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, fmt.Errorf("RECORD_STORE_URL is not configured: %w", apperrors.ErrConfiguration)
	}
	raw := c.BaseURL + "/tables/" + url.PathEscape(table) + "/records"
	if id != "" {
		raw += "/" + url.PathEscape(id)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid RECORD_STORE_URL: %w", err)
	}
	return u, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperrors.UpstreamError{StatusCode: resp.StatusCode, Service: "record store", Body: string(respBody)}
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("record store returned invalid JSON: %w", err)
		}
	}
	return nil
}
