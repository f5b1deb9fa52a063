package interfaces

import (
	"context"

	"sentiment-forecaster/internal/types"
)

// QuoteSource returns grouped key statistics for a ticker.
type QuoteSource interface {
	FetchInfo(ctx context.Context, ticker string) (*types.InstrumentInfo, error)
}
