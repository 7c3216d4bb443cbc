package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/aide/internal/config"
	"github.com/example/aide/internal/ports/secondary"
	"github.com/example/aide/internal/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Initial: time.Millisecond, Multiplier: 1.0}
}

func newTestClient(url string) *Client {
	cfg := &config.Config{WorkspaceURL: url, WorkspaceToken: "tok", WorkspaceDBID: "db1"}
	return New(cfg, fastPolicy(), nil)
}

func TestQueryFollowsPagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/databases/db1/query", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body struct {
			Cursor string `json:"cursor"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		calls++
		if body.Cursor == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"results":     []map[string]any{{"id": "REQ-1", "title": "one"}},
				"next_cursor": "page2",
			})
			return
		}
		require.Equal(t, "page2", body.Cursor)
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"id": "REQ-2", "title": "two"}},
		})
	}))
	defer server.Close()

	records, err := newTestClient(server.URL).Query(context.Background(), secondary.RequestFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Len(t, records, 2)
	require.Equal(t, "REQ-1", records[0].ID)
	require.Equal(t, "REQ-2", records[1].ID)
}

func TestCreateSendsIdempotencyKey(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		json.NewEncoder(w).Encode(map[string]any{"id": "REQ-9", "title": "new wish"})
	}))
	defer server.Close()

	created, err := newTestClient(server.URL).Create(context.Background(),
		&secondary.RequestRecord{Title: "new wish"}, "01TOKEN")
	require.NoError(t, err)
	require.Equal(t, "01TOKEN", gotKey)
	require.Equal(t, "REQ-9", created.ID)
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/databases/db1/records/REQ-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": "REQ-1", "title": "Organic Bananas", "status": "new"})
	}))
	defer server.Close()

	record, err := newTestClient(server.URL).Get(context.Background(), "REQ-1")
	require.NoError(t, err)
	require.Equal(t, "Organic Bananas", record.Title)
	require.Equal(t, "new", record.Status)
}

func TestUpdateMapsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such record"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Update(context.Background(), "REQ-404",
		map[string]string{secondary.FieldTitle: "x"})
	require.ErrorIs(t, err, secondary.ErrNotFound)
}

func TestRejectionIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"message":"status must be one of the known values"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Update(context.Background(), "REQ-1",
		map[string]string{secondary.FieldStatus: "bogus"})

	require.Equal(t, 1, calls, "validation failures must not be retried")
	var rej *secondary.RejectionError
	require.True(t, errors.As(err, &rej))
	require.Equal(t, http.StatusUnprocessableEntity, rej.Status)
	require.Contains(t, rej.Message, "known values")
}

func TestServerErrorRetriesThenUnreachable(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Query(context.Background(), secondary.RequestFilter{})
	require.Equal(t, 3, calls, "5xx should retry up to the policy cap")
	require.ErrorIs(t, err, secondary.ErrUnreachable)
}

func TestTransportFailureIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newTestClient(server.URL).Query(context.Background(), secondary.RequestFilter{})
	require.ErrorIs(t, err, secondary.ErrUnreachable)
}
