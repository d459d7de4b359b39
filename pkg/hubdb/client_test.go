package hubdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BartekS5/hubdb-sync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Options{BaseURL: server.URL, Token: "tok", TableID: "12345"})
}

func TestClient_ListRows(t *testing.T) {
	client := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/12345/rows/draft", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("after") == "" {
			_, _ = w.Write([]byte(`{"results":[{"id":"1","values":{"metric":"a"}},{"id":"2","values":{}}],"paging":{"next":{"after":"cursor-2"}}}`))
			return
		}
		assert.Equal(t, "cursor-2", r.URL.Query().Get("after"))
		_, _ = w.Write([]byte(`{"results":[{"id":"3","values":{}}]}`))
	})

	page, err := client.ListRows(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "1", page.Rows[0].ID)
	assert.Equal(t, "a", page.Rows[0].Values["metric"])
	assert.Equal(t, "cursor-2", page.Next)

	page, err = client.ListRows(context.Background(), page.Next)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Empty(t, page.Next)
}

func TestClient_PurgeRows(t *testing.T) {
	client := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/12345/rows/draft/batch/purge", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Inputs []string `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"1", "2"}, body.Inputs)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.PurgeRows(context.Background(), []string{"1", "2"}))
}

func TestClient_CreateRows(t *testing.T) {
	client := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/12345/rows/draft/batch/create", r.URL.Path)

		var body struct {
			Inputs []models.TargetRow `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Inputs, 1)
		assert.Equal(t, "head_count", body.Inputs[0].Values["metric"])
		assert.Equal(t, float64(12.5), body.Inputs[0].Values["value"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"COMPLETE","results":[]}`))
	})

	rows := []models.TargetRow{{Values: map[string]interface{}{"metric": "head_count", "value": 12.5}}}
	require.NoError(t, client.CreateRows(context.Background(), rows))
}

func TestClient_BatchLimits(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://unused.invalid", TableID: "1"})

	ids := make([]string, MaxBatchSize+1)
	assert.Error(t, client.PurgeRows(context.Background(), ids))

	rows := make([]models.TargetRow, MaxBatchSize+1)
	assert.Error(t, client.CreateRows(context.Background(), rows))
}

func TestClient_PublishError(t *testing.T) {
	var observed []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/12345/draft/publish", r.URL.Path)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"missing scope hubdb"}`))
	}))
	defer server.Close()

	client := NewClient(Options{
		BaseURL: server.URL + "/",
		Token:   "tok",
		TableID: "12345",
		OnResponse: func(op string, status int, _ time.Duration) {
			assert.Equal(t, "publish", op)
			observed = append(observed, status)
		},
	})

	err := client.Publish(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "missing scope")
	assert.Equal(t, "/draft/publish", apiErr.Path)
	assert.Equal(t, []int{http.StatusForbidden}, observed)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(Options{BaseURL: server.URL, TableID: "1"})
	err := client.Publish(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_ErrorBodyTruncated(t *testing.T) {
	client := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	})

	err := client.PurgeRows(context.Background(), []string{"1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Len(t, apiErr.Body, 1024)
}
