package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/query", r.URL.Path)

		var req QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "propeller issues", req.Message)
		assert.Equal(t, 3, req.TopK)

		json.NewEncoder(w).Encode(QueryResponse{
			Answer:  "two prior incidents",
			Sources: []Source{{Sender: "ops", Subject: "incident log"}},
		})
	}))
	defer srv.Close()

	client, err := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := client.Query(context.Background(), QueryRequest{Message: "propeller issues", TopK: 3})
	require.NoError(t, err)
	assert.Equal(t, "two prior incidents", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "incident log", resp.Sources[0].Subject)
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Query(context.Background(), QueryRequest{Message: "q", TopK: 1})
	assert.ErrorContains(t, err, "503")
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{})
	assert.Error(t, err)
}
