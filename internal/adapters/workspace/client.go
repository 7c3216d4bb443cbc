// Package workspace is the HTTP client for the hosted workspace
// database holding friction requests. All failures are mapped to the
// secondary port error taxonomy: transport problems and 5xx responses
// become ErrUnreachable, validation failures become RejectionError, and
// a missing record becomes ErrNotFound.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/aide/internal/config"
	"github.com/example/aide/internal/ports/secondary"
	"github.com/example/aide/internal/retry"
)

const defaultPageSize = 100

// Client implements secondary.WorkspaceRepository over HTTP.
type Client struct {
	baseURL string
	token   string
	dbID    string
	http    *http.Client
	policy  retry.Policy
	logger  *zap.Logger
}

// New creates a workspace client from config. The logger may be nil.
func New(cfg *config.Config, policy retry.Policy, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.WorkspaceURL,
		token:   cfg.WorkspaceToken,
		dbID:    cfg.WorkspaceDBID,
		http:    &http.Client{Timeout: 15 * time.Second},
		policy:  policy,
		logger:  logger,
	}
}

// wireRecord is the JSON shape on the wire.
type wireRecord struct {
	ID             string   `json:"id"`
	URL            string   `json:"url,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	DesiredOutcome string   `json:"desired_outcome,omitempty"`
	Frequency      string   `json:"frequency,omitempty"`
	Impact         string   `json:"impact,omitempty"`
	Domains        []string `json:"domains,omitempty"`
	Status         string   `json:"status,omitempty"`
	Source         string   `json:"source,omitempty"`
	Link           string   `json:"link,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

func toRecord(w *wireRecord) *secondary.RequestRecord {
	return &secondary.RequestRecord{
		ID:             w.ID,
		URL:            w.URL,
		Title:          w.Title,
		Description:    w.Description,
		DesiredOutcome: w.DesiredOutcome,
		Frequency:      w.Frequency,
		Impact:         w.Impact,
		Domains:        w.Domains,
		Status:         w.Status,
		Source:         w.Source,
		Link:           w.Link,
		Notes:          w.Notes,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func fromRecord(r *secondary.RequestRecord) *wireRecord {
	return &wireRecord{
		Title:          r.Title,
		Description:    r.Description,
		DesiredOutcome: r.DesiredOutcome,
		Frequency:      r.Frequency,
		Impact:         r.Impact,
		Domains:        r.Domains,
		Status:         r.Status,
		Source:         r.Source,
		Link:           r.Link,
		Notes:          r.Notes,
	}
}

type queryRequest struct {
	Statuses []string `json:"statuses,omitempty"`
	Query    string   `json:"query,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Cursor   string   `json:"cursor,omitempty"`
}

type queryResponse struct {
	Results    []*wireRecord `json:"results"`
	NextCursor string        `json:"next_cursor"`
}

// Query returns records matching the filter, following pagination
// cursors until the server is exhausted or the limit is reached.
func (c *Client) Query(ctx context.Context, filter secondary.RequestFilter) ([]*secondary.RequestRecord, error) {
	var records []*secondary.RequestRecord
	cursor := ""
	for {
		pageSize := defaultPageSize
		if filter.Limit > 0 && filter.Limit-len(records) < pageSize {
			pageSize = filter.Limit - len(records)
		}
		body := queryRequest{
			Statuses: filter.Statuses,
			Query:    filter.Query,
			Limit:    pageSize,
			Cursor:   cursor,
		}

		var page queryResponse
		path := fmt.Sprintf("/v1/databases/%s/query", c.dbID)
		if err := c.call(ctx, http.MethodPost, path, nil, body, &page); err != nil {
			return nil, err
		}
		for _, w := range page.Results {
			records = append(records, toRecord(w))
		}

		if page.NextCursor == "" || (filter.Limit > 0 && len(records) >= filter.Limit) {
			break
		}
		cursor = page.NextCursor
	}
	return records, nil
}

// Get returns one record by ID.
func (c *Client) Get(ctx context.Context, id string) (*secondary.RequestRecord, error) {
	path := fmt.Sprintf("/v1/databases/%s/records/%s", c.dbID, id)

	var found wireRecord
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &found); err != nil {
		return nil, err
	}
	return toRecord(&found), nil
}

// Create inserts a record. The client token travels as the
// Idempotency-Key header; a replay with the same token returns the
// already-created record instead of inserting a duplicate.
func (c *Client) Create(ctx context.Context, record *secondary.RequestRecord, clientToken string) (*secondary.RequestRecord, error) {
	headers := map[string]string{"Idempotency-Key": clientToken}
	path := fmt.Sprintf("/v1/databases/%s/records", c.dbID)

	var created wireRecord
	if err := c.call(ctx, http.MethodPost, path, headers, fromRecord(record), &created); err != nil {
		return nil, err
	}
	return toRecord(&created), nil
}

// Update writes the named fields to an existing record.
func (c *Client) Update(ctx context.Context, id string, fields map[string]string) (*secondary.RequestRecord, error) {
	path := fmt.Sprintf("/v1/databases/%s/records/%s", c.dbID, id)

	var updated wireRecord
	if err := c.call(ctx, http.MethodPatch, path, nil, fields, &updated); err != nil {
		return nil, err
	}
	return toRecord(&updated), nil
}

// call issues one JSON request under the retry policy. Rejections and
// not-found are permanent; everything else retries up to the policy cap
// and then surfaces as unreachable.
func (c *Client) call(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	err := c.policy.Do(ctx, func() error {
		return c.once(ctx, method, path, headers, payload, out)
	})
	if err == nil {
		return nil
	}

	var rej *secondary.RejectionError
	if errors.As(err, &rej) || errors.Is(err, secondary.ErrNotFound) {
		return err
	}
	if errors.Is(err, secondary.ErrUnreachable) {
		return err
	}
	return fmt.Errorf("%w: %v", secondary.ErrUnreachable, err)
}

func (c *Client) once(ctx context.Context, method, path string, headers map[string]string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("workspace request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", secondary.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return retry.Permanent(secondary.ErrNotFound)
	case resp.StatusCode >= 500:
		c.logger.Warn("workspace server error",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: server returned %d", secondary.ErrUnreachable, resp.StatusCode)
	default:
		msg := readErrorMessage(resp.Body)
		return retry.Permanent(&secondary.RejectionError{Status: resp.StatusCode, Message: msg})
	}
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no detail provided"
	}
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(data)
}
