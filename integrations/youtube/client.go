// Package youtube reads public channel statistics from the YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// ErrChannelNotFound is returned when the API knows no channel with the id.
var ErrChannelNotFound = errors.New("youtube channel not found")

// ChannelStats are the public counters of a channel.
type ChannelStats struct {
	ChannelID       string `json:"channel_id"`
	Title           string `json:"title"`
	Subscribers     uint64 `json:"subscribers"`
	Views           uint64 `json:"views"`
	Videos          uint64 `json:"videos"`
	HiddenSubscribe bool   `json:"subscribers_hidden"`
}

// Config configures the client.
type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// Client wraps the generated YouTube service.
type Client struct {
	svc *yt.Service
}

// New builds an API-key authenticated client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube api key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{
			Timeout:   timeout,
			Transport: apiKeyTransport{key: cfg.APIKey, base: http.DefaultTransport},
		}),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ChannelStats fetches statistics for one channel id.
func (c *Client) ChannelStats(ctx context.Context, channelID string) (*ChannelStats, error) {
	resp, err := c.svc.Channels.List([]string{"snippet", "statistics"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube channels.list: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Statistics == nil {
		return nil, ErrChannelNotFound
	}

	ch := resp.Items[0]
	stats := &ChannelStats{
		ChannelID:       ch.Id,
		Subscribers:     ch.Statistics.SubscriberCount,
		Views:           ch.Statistics.ViewCount,
		Videos:          ch.Statistics.VideoCount,
		HiddenSubscribe: ch.Statistics.HiddenSubscriberCount,
	}
	if ch.Snippet != nil {
		stats.Title = ch.Snippet.Title
	}
	return stats, nil
}

// apiKeyTransport adds the key query parameter; a custom HTTP client bypasses
// option.WithAPIKey.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	q := clone.URL.Query()
	q.Set("key", t.key)
	clone.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(clone)
}
