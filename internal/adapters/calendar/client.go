// Package calendar is the read-only HTTP client for the calendar
// collaborator. It only lists events; aide never writes to the calendar.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/example/aide/internal/config"
	"github.com/example/aide/internal/ports/secondary"
)

// Client implements secondary.CalendarReader over HTTP.
type Client struct {
	baseURL    string
	calendarID string
	http       *http.Client
}

// New creates a calendar client from config. Returns nil when no
// calendar is configured; callers treat a nil reader as "no calendar".
func New(cfg *config.Config) *Client {
	if cfg.CalendarURL == "" {
		return nil
	}
	return &Client{
		baseURL:    cfg.CalendarURL,
		calendarID: cfg.CalendarID,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type wireEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ListEvents returns events overlapping [from, to). Transport failures
// map to ErrUnreachable; the caller degrades to a warning rather than
// blocking the preview.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]secondary.Event, error) {
	endpoint := fmt.Sprintf("%s/v1/calendars/%s/events?from=%s&to=%s",
		c.baseURL, url.PathEscape(c.calendarID),
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secondary.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: calendar returned %d", secondary.ErrUnreachable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &secondary.RejectionError{Status: resp.StatusCode, Message: "calendar request rejected"}
	}

	var body struct {
		Events []wireEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}

	events := make([]secondary.Event, 0, len(body.Events))
	for _, w := range body.Events {
		start, err := time.Parse(time.RFC3339, w.Start)
		if err != nil {
			continue // skip malformed entries rather than fail the listing
		}
		end, _ := time.Parse(time.RFC3339, w.End)
		events = append(events, secondary.Event{ID: w.ID, Title: w.Title, Start: start, End: end})
	}
	return events, nil
}
