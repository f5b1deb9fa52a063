package pricesobs

import (
	"context"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/trace"
	"sentiment-forecaster/internal/types"
)

// observableSource wraps a PriceSource with observability (logging & tracing)
type observableSource struct {
	source interfaces.PriceSource
}

// Compile-time interface check
var _ interfaces.PriceSource = (*observableSource)(nil)

// Wrap wraps a price source with observability middleware
func Wrap(source interfaces.PriceSource) interfaces.PriceSource {
	return &observableSource{
		source: source,
	}
}

// FetchHistory fetches bars with observability
func (ps *observableSource) FetchHistory(ctx context.Context, ticker, period, interval string) ([]types.Bar, error) {
	ctx, span := trace.StartSpan(ctx, "prices.FetchHistory")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching price history", "ticker", ticker, "period", period, "interval", interval)

	bars, err := ps.source.FetchHistory(ctx, ticker, period, interval)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch price history", err, "ticker", ticker, "period", period, "interval", interval)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Price history fetched", "ticker", ticker, "bars", len(bars))
	return bars, nil
}

type observableQuotes struct {
	source interfaces.QuoteSource
}

var _ interfaces.QuoteSource = (*observableQuotes)(nil)

// WrapQuotes wraps a quote source with observability middleware. A nil source
// stays nil.
func WrapQuotes(source interfaces.QuoteSource) interfaces.QuoteSource {
	if source == nil {
		return nil
	}
	return &observableQuotes{source: source}
}

func (qs *observableQuotes) FetchInfo(ctx context.Context, ticker string) (*types.InstrumentInfo, error) {
	ctx, span := trace.StartSpan(ctx, "prices.FetchInfo")
	defer span.End()

	info, err := qs.source.FetchInfo(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch key statistics", err, "ticker", ticker)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Key statistics fetched", "ticker", ticker, "sections", len(info.Sections))
	return info, nil
}
