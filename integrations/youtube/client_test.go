package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), Config{APIKey: "test-key", Endpoint: srv.URL + "/"})
	require.NoError(t, err)
	return client
}

func TestChannelStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/channels", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "UC123", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"UC123","snippet":{"title":"Launch"},
			"statistics":{"subscriberCount":"1200","viewCount":"98000","videoCount":"42"}}]}`))
	})

	stats, err := client.ChannelStats(context.Background(), "UC123")
	require.NoError(t, err)
	assert.Equal(t, &ChannelStats{
		ChannelID:   "UC123",
		Title:       "Launch",
		Subscribers: 1200,
		Views:       98000,
		Videos:      42,
	}, stats)
}

func TestChannelStats_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	_, err := client.ChannelStats(context.Background(), "UCmissing")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestChannelStats_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	})

	_, err := client.ChannelStats(context.Background(), "UC123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrChannelNotFound)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
