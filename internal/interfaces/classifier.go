package interfaces

import (
	"context"

	"sentiment-forecaster/internal/types"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (types.RawSentiment, error)
}
