package interfaces

import (
	"context"

	"sentiment-forecaster/internal/types"
)

// PriceSource returns OHLC bars for a ticker, oldest first.
type PriceSource interface {
	FetchHistory(ctx context.Context, ticker, period, interval string) ([]types.Bar, error)
}
