package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var (
	positiveWords = []string{
		"love", "loved", "great", "excellent", "amazing", "awesome", "good", "nice",
		"fantastic", "wonderful", "best", "happy", "like", "liked", "enjoy", "enjoyed",
		"beautiful", "brilliant", "perfect", "helpful", "fun", "recommend", "impressive",
	}
	negativeWords = []string{
		"hate", "hated", "bad", "terrible", "awful", "horrible", "worst", "poor",
		"boring", "ugly", "disappointed", "disappointing", "annoying", "broken",
		"confusing", "useless", "slow", "spam", "waste", "angry", "dislike",
	}
	negators = map[string]bool{
		"not": true, "no": true, "never": true, "dont": true, "don't": true,
		"isnt": true, "isn't": true, "wasnt": true, "wasn't": true,
	}
)

// LexiconClassifier scores text by counting polarity words, flipping a word
// that directly follows a negator.
type LexiconClassifier struct {
	positive map[string]bool
	negative map[string]bool
}

// NewLexiconClassifier creates the built-in word-list classifier.
func NewLexiconClassifier() *LexiconClassifier {
	c := &LexiconClassifier{
		positive: make(map[string]bool, len(positiveWords)),
		negative: make(map[string]bool, len(negativeWords)),
	}
	for _, w := range positiveWords {
		c.positive[w] = true
	}
	for _, w := range negativeWords {
		c.negative[w] = true
	}
	return c
}

// Name returns the classifier name stored with each feedback row.
func (c *LexiconClassifier) Name() string {
	return "lexicon"
}

// Classify implements Classifier. It never fails.
func (c *LexiconClassifier) Classify(_ context.Context, text string) (Result, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var pos, neg int
	negated := false
	for _, w := range words {
		polarity := 0
		switch {
		case c.positive[w]:
			polarity = 1
		case c.negative[w]:
			polarity = -1
		}
		if negated {
			polarity = -polarity
		}
		switch polarity {
		case 1:
			pos++
		case -1:
			neg++
		}
		negated = negators[w]
	}

	score := 0.0
	if total := pos + neg; total > 0 {
		score = float64(pos-neg) / float64(total)
	}
	return Result{Label: labelFor(score), Score: score, Classifier: c.Name()}, nil
}
