package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLexiconClassifier(t *testing.T) {
	tests := []struct {
		text  string
		label models.Sentiment
		score float64
	}{
		{"I love this, great video", models.SentimentPositive, 1},
		{"This is terrible and boring", models.SentimentNegative, -1},
		{"It was not good", models.SentimentNegative, -1},
		{"Don't like the colors", models.SentimentNegative, -1},
		{"The video is out on Tuesday", models.SentimentNeutral, 0},
		{"Great visuals but slow and confusing", models.SentimentNegative, -1.0 / 3},
		{"", models.SentimentNeutral, 0},
	}

	c := NewLexiconClassifier()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.label, res.Label)
			assert.InDelta(t, tt.score, res.Score, 1e-9)
			assert.Equal(t, "lexicon", res.Classifier)
		})
	}
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
		"id": "chatcmpl-1",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
	}))
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "Best launch ever", req.Messages[1].Content)

		chatReply(t, w, `{"label":"positive","score":0.9}`)
	}))
	defer server.Close()

	c := NewOpenAIClassifier(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	res, err := c.Classify(context.Background(), "Best launch ever")

	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, res.Label)
	assert.Equal(t, 0.9, res.Score)
	assert.Equal(t, "openai", res.Classifier)
}

func TestOpenAIClassifier_NormalisesVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"label":"mixed","score":-3}`)
	}))
	defer server.Close()

	res, err := NewOpenAIClassifier(OpenAIConfig{APIKey: "k", BaseURL: server.URL}).Classify(context.Background(), "meh")
	require.NoError(t, err)
	assert.Equal(t, -1.0, res.Score)
	assert.Equal(t, models.SentimentNegative, res.Label)
}

func TestOpenAIClassifier_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		chatReply(t, w, `{"label":"neutral","score":0}`)
	}))
	defer server.Close()

	c := NewOpenAIClassifier(OpenAIConfig{APIKey: "k", BaseURL: server.URL, MaxRetries: 2, RetryDelay: time.Millisecond})
	res, err := c.Classify(context.Background(), "ok")

	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, res.Label)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestOpenAIClassifier_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
		code      string
	}{
		{"bad request is final", http.StatusBadRequest, `{"error":{"message":"bad model","type":"invalid_request_error"}}`, false, "invalid_request_error"},
		{"server error after retries", http.StatusInternalServerError, `oops`, true, "UNKNOWN_ERROR"},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, true, "rate_limit"},
		{"reply not json", http.StatusOK, "", false, "INVALID_VERDICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status == http.StatusOK {
					chatReply(t, w, "positive!")
					return
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewOpenAIClassifier(OpenAIConfig{APIKey: "k", BaseURL: server.URL, MaxRetries: 1, RetryDelay: time.Millisecond})
			_, err := c.Classify(context.Background(), "text")

			require.Error(t, err)
			var provErr *ProviderError
			require.True(t, errors.As(err, &provErr))
			assert.Equal(t, tt.code, provErr.Code)
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

type failingClassifier struct{}

func (failingClassifier) Name() string { return "openai" }

func (failingClassifier) Classify(context.Context, string) (Result, error) {
	return Result{}, NewProviderError("openai", "HTTP_ERROR", "HTTP request failed", 0, true, errors.New("dial tcp"))
}

func TestFallbackClassifier(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewFallbackClassifier(failingClassifier{}, NewLexiconClassifier(), zap.New(core))

	res, err := c.Classify(context.Background(), "awesome work")

	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, res.Label)
	assert.Equal(t, "lexicon", res.Classifier)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "sentiment provider failed, using fallback classifier", entry.Message)
	assert.Equal(t, true, entry.ContextMap()["retryable"])
}

func TestNew(t *testing.T) {
	assert.IsType(t, &LexiconClassifier{}, New(OpenAIConfig{}, zap.NewNop()))
	assert.IsType(t, &FallbackClassifier{}, New(OpenAIConfig{APIKey: "k"}, zap.NewNop()))
}
