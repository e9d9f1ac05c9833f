// Package sentiment labels feedback text as positive, neutral or negative.
package sentiment

import (
	"context"

	"github.com/upb/campaign-hub/models"
	"go.uber.org/zap"
)

// Result is one classification. Score is in [-1, 1].
type Result struct {
	Label      models.Sentiment
	Score      float64
	Classifier string
}

// Classifier labels text.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (Result, error)
}

// FallbackClassifier tries primary and falls back on any primary error.
type FallbackClassifier struct {
	primary  Classifier
	fallback Classifier
	logger   *zap.Logger
}

// NewFallbackClassifier creates a FallbackClassifier.
func NewFallbackClassifier(primary, fallback Classifier, logger *zap.Logger) *FallbackClassifier {
	return &FallbackClassifier{primary: primary, fallback: fallback, logger: logger}
}

// Name returns the primary classifier name.
func (c *FallbackClassifier) Name() string {
	return c.primary.Name()
}

// Classify implements Classifier.
func (c *FallbackClassifier) Classify(ctx context.Context, text string) (Result, error) {
	res, err := c.primary.Classify(ctx, text)
	if err == nil {
		return res, nil
	}

	c.logger.Warn("sentiment provider failed, using fallback classifier",
		zap.String("provider", c.primary.Name()),
		zap.String("fallback", c.fallback.Name()),
		zap.Bool("retryable", IsRetryable(err)),
		zap.Error(err))
	return c.fallback.Classify(ctx, text)
}

// New returns the OpenAI classifier backed by the lexicon when apiKey is
// set, and the lexicon alone otherwise.
func New(cfg OpenAIConfig, logger *zap.Logger) Classifier {
	lexicon := NewLexiconClassifier()
	if cfg.APIKey == "" {
		logger.Info("sentiment classifier configured", zap.String("classifier", lexicon.Name()))
		return lexicon
	}
	logger.Info("sentiment classifier configured",
		zap.String("classifier", "openai"),
		zap.String("model", cfg.Model))
	return NewFallbackClassifier(NewOpenAIClassifier(cfg), lexicon, logger)
}

func labelFor(score float64) models.Sentiment {
	switch {
	case score >= 0.2:
		return models.SentimentPositive
	case score <= -0.2:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func clamp(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
