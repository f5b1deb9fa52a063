package sentiment

import (
	"context"
	"fmt"
	"os"
	"time"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/store"
	"sentiment-forecaster/internal/types"
)

// Passthrough never recognises its input, so scoring falls back to keyword
// counting over the text.
type Passthrough struct{}

var _ interfaces.Classifier = Passthrough{}

func (Passthrough) Classify(context.Context, string) (types.RawSentiment, error) {
	return types.RawSentiment{Kind: types.Unrecognized}, nil
}

// NewClassifier builds the classifier named by sentiment.classifier
func NewClassifier(cfg *store.Config) (interfaces.Classifier, error) {
	switch cfg.Sentiment.Classifier {
	case "HTTP":
		return NewRemoteClassifier(cfg.Sentiment.Endpoint, time.Duration(cfg.News.TimeoutSeconds)*time.Second), nil
	case "CLAUDE":
		return NewClaudeClassifier(os.Getenv("ANTHROPIC_API_KEY"), cfg.Sentiment.Model, cfg.Sentiment.MaxTokens, cfg.Sentiment.System)
	case "NONE":
		return Passthrough{}, nil
	case "LEXICON", "":
		return NewLexiconClassifier(), nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", cfg.Sentiment.Classifier)
	}
}
