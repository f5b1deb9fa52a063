package sentimentobs

import (
	"context"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/trace"
	"sentiment-forecaster/internal/types"
)

// observableClassifier wraps a Classifier with observability (logging & tracing)
type observableClassifier struct {
	classifier interfaces.Classifier
}

// Compile-time interface check
var _ interfaces.Classifier = (*observableClassifier)(nil)

// Wrap wraps a classifier with observability middleware
func Wrap(classifier interfaces.Classifier) interfaces.Classifier {
	return &observableClassifier{
		classifier: classifier,
	}
}

// Classify classifies one text with observability
func (oc *observableClassifier) Classify(ctx context.Context, text string) (types.RawSentiment, error) {
	ctx, span := trace.StartSpan(ctx, "sentiment.Classify")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Classifying text", "chars", len(text))

	raw, err := oc.classifier.Classify(ctx, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Classification failed", err, "chars", len(text))
		return types.RawSentiment{}, err
	}

	logger.DebugSkip(ctx, 1, "Text classified", "kind", raw.Kind.String())
	return raw, nil
}
