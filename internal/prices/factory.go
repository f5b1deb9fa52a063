package prices

import (
	"errors"
	"fmt"
	"os"
	"time"

	"sentiment-forecaster/internal/api"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/store"
)

// NewSource builds the price source named by prices.source
func NewSource(cfg *store.Config) (interfaces.PriceSource, error) {
	switch cfg.Prices.Source {
	case "YAHOO", "":
		return NewYahooSource(yahooClient(cfg), ""), nil
	case "KITE":
		apiKey, token := os.Getenv("KITE_API_KEY"), os.Getenv("KITE_ACCESS_TOKEN")
		if apiKey == "" || token == "" {
			return nil, errors.New("KITE_API_KEY and KITE_ACCESS_TOKEN are required for prices.source KITE")
		}
		return NewKiteSource(apiKey, token), nil
	case "STATIC":
		return NewStaticSource(), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.Prices.Source)
	}
}

// NewQuoteSource builds the key statistics source. Kite has no fundamentals,
// so KITE reads them from Yahoo too; STATIC has none and returns nil.
func NewQuoteSource(cfg *store.Config) interfaces.QuoteSource {
	switch cfg.Prices.Source {
	case "STATIC":
		return nil
	default:
		return NewYahooQuoteSource(yahooClient(cfg), "")
	}
}

func yahooClient(cfg *store.Config) *api.Client {
	opts := []api.ClientOption{api.WithTimeout(time.Duration(cfg.Prices.TimeoutSeconds) * time.Second)}
	if cfg.Prices.RequestsPerSecond > 0 {
		opts = append(opts, api.WithRateLimit(cfg.Prices.RequestsPerSecond, 1))
	}
	return api.NewClient(opts...)
}
