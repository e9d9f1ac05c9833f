package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/campaign-hub/models"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	systemPrompt = `You classify the sentiment of marketing campaign feedback. ` +
		`Reply with a JSON object {"label": "positive"|"neutral"|"negative", "score": number} ` +
		`where score is between -1 (very negative) and 1 (very positive).`
)

// OpenAIConfig configures the chat-completions classifier.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// OpenAIClassifier asks a chat-completions model for a label and score.
type OpenAIClassifier struct {
	config     OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClassifier creates a classifier, filling defaults for empty fields.
func NewOpenAIClassifier(config OpenAIConfig) *OpenAIClassifier {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 200 * time.Millisecond
	}

	return &OpenAIClassifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name
func (c *OpenAIClassifier) Name() string {
	return "openai"
}

// Classify implements Classifier.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Result, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return Result{}, NewProviderError(c.Name(), "MARSHAL_ERROR", "failed to marshal request", 0, false, err)
	}

	status, respBody, err := c.do(ctx, reqBody)
	if err != nil {
		return Result{}, err
	}
	if status != http.StatusOK {
		return Result{}, c.handleErrorResponse(status, respBody)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return Result{}, NewProviderError(c.Name(), "UNMARSHAL_ERROR", "failed to unmarshal response", status, false, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, NewProviderError(c.Name(), "EMPTY_RESPONSE", "no choices returned", status, false, nil)
	}

	var verdict struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &verdict); err != nil {
		return Result{}, NewProviderError(c.Name(), "INVALID_VERDICT", "model reply is not the expected JSON", status, false, err)
	}

	score := clamp(verdict.Score)
	label := models.Sentiment(strings.ToLower(verdict.Label))
	if !label.Valid() {
		label = labelFor(score)
	}
	return Result{Label: label, Score: score, Classifier: c.Name()}, nil
}

// do sends the request, retrying transport errors and 5xx/429 responses.
func (c *OpenAIClassifier) do(ctx context.Context, body []byte) (int, []byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, NewProviderError(c.Name(), "CANCELLED", "request cancelled", 0, false, ctx.Err())
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return 0, nil, NewProviderError(c.Name(), "REQUEST_ERROR", "failed to create request", 0, false, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = NewProviderError(c.Name(), "HTTP_ERROR", "HTTP request failed", 0, true, err)
			continue
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = NewProviderError(c.Name(), "READ_ERROR", "failed to read response", resp.StatusCode, true, err)
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = c.handleErrorResponse(resp.StatusCode, respBody)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	return 0, nil, lastErr
}

func (c *OpenAIClassifier) handleErrorResponse(statusCode int, body []byte) error {
	retryable := statusCode >= 500 || statusCode == http.StatusTooManyRequests

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return NewProviderError(c.Name(), "UNKNOWN_ERROR", fmt.Sprintf("status %d", statusCode), statusCode, retryable, nil)
	}
	return NewProviderError(c.Name(), errResp.Error.Type, errResp.Error.Message, statusCode, retryable, errors.New(errResp.Error.Message))
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
