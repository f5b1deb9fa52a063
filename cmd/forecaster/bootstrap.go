package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"sentiment-forecaster/internal/api"
	"sentiment-forecaster/internal/forecast"
	"sentiment-forecaster/internal/forecast/forecastobs"
	"sentiment-forecaster/internal/forecastlog"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/news"
	"sentiment-forecaster/internal/prices"
	"sentiment-forecaster/internal/prices/pricesobs"
	"sentiment-forecaster/internal/sentiment"
	"sentiment-forecaster/internal/sentiment/sentimentobs"
	"sentiment-forecaster/internal/store"
	"sentiment-forecaster/internal/trace"
	"sentiment-forecaster/internal/universe"
)

// initializeSystem initializes env, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old audit files if retention is configured
func compressOldLogs(ctx context.Context, audit *forecastlog.Writer) {
	v := os.Getenv("FORECAST_LOG_RETENTION_DAYS")
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn(ctx, "Ignoring FORECAST_LOG_RETENTION_DAYS", "value", v)
		return
	}
	if err := audit.CompressOlder(n); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

func initializeUniverse(ctx context.Context, cfg *store.Config) (*universe.Universe, error) {
	if cfg.UniverseFile == "" {
		return universe.Default(), nil
	}
	return universe.LoadCSV(ctx, cfg.UniverseFile)
}

// initializePrices builds the price source, optionally behind the badger
// cache, with observability. The returned func releases the cache.
func initializePrices(ctx context.Context, cfg *store.Config) (interfaces.PriceSource, func(), error) {
	src, err := prices.NewSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info(ctx, "Using price source", "source", cfg.Prices.Source)

	cleanup := func() {}
	if cfg.Prices.CacheDir != "" {
		cached, err := prices.OpenCache(src, cfg.Prices.CacheDir, time.Duration(cfg.Prices.CacheTTLMinutes)*time.Minute)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "Price cache enabled", "dir", cfg.Prices.CacheDir, "ttl_minutes", cfg.Prices.CacheTTLMinutes)
		src = cached
		cleanup = func() {
			if err := cached.Close(); err != nil {
				logger.Warn(ctx, "Failed to close price cache", "error", err)
			}
		}
	}

	return pricesobs.Wrap(src), cleanup, nil
}

// initializeClassifier initializes the sentiment classifier with observability
func initializeClassifier(ctx context.Context, cfg *store.Config) (interfaces.Classifier, error) {
	clf, err := sentiment.NewClassifier(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Sentiment.Classifier == "NONE" {
		logger.Warn(ctx, "No classifier configured - news is scored by keywords only")
	}
	return sentimentobs.Wrap(clf), nil
}

// initializeNews builds the news aggregator; source NONE yields neutral sentiment
func initializeNews(ctx context.Context, cfg *store.Config, clf interfaces.Classifier) *news.Aggregator {
	timeout := time.Duration(cfg.News.TimeoutSeconds) * time.Second

	var src interfaces.NewsSource
	switch cfg.News.Source {
	case "YAHOO":
		src = news.NewYahooSource(api.NewClient(api.WithTimeout(timeout)), "", cfg.News.MaxArticles)
	case "SCRAPER":
		src = news.NewScraper(timeout, cfg.News.MaxArticles)
	default:
		logger.Warn(ctx, "News disabled - sentiment is always neutral")
	}

	return news.NewAggregator(src, clf, time.Duration(cfg.News.CacheMinutes)*time.Minute)
}

// initializeForecaster wires the forecast service with observability
func initializeForecaster(ctx context.Context, cfg *store.Config, audit *forecastlog.Writer) (interfaces.Forecaster, func(), error) {
	u, err := initializeUniverse(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	src, cleanup, err := initializePrices(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	clf, err := initializeClassifier(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	agg := initializeNews(ctx, cfg, clf)

	svc := forecast.NewService(src, agg, clf, u, forecast.OptionsFromConfig(cfg), audit).
		WithQuotes(pricesobs.WrapQuotes(prices.NewQuoteSource(cfg)))
	return forecastobs.Wrap(svc), cleanup, nil
}
