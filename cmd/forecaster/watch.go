package main

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"sentiment-forecaster/internal/forecastlog"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/store"
	"sentiment-forecaster/internal/types"
)

const defaultWatchSchedule = "30 16 * * 1-5"

// runWatch forecasts every watch symbol on the configured schedule until ctx
// is cancelled, then writes the day's summary.
func runWatch(ctx context.Context, cfg *store.Config, fc interfaces.Forecaster, audit *forecastlog.Writer) error {
	if len(cfg.Watch.Symbols) == 0 {
		return errors.New("watch.symbols is empty")
	}
	schedule := cfg.Watch.Schedule
	if schedule == "" {
		schedule = defaultWatchSchedule
	}

	c := cron.New(cron.WithLocation(ist()))
	if _, err := c.AddFunc(schedule, func() { forecastAll(ctx, cfg, fc) }); err != nil {
		return err
	}
	c.Start()
	logger.Info(ctx, "Watch started", "schedule", schedule, "symbols", len(cfg.Watch.Symbols))

	<-ctx.Done()
	logger.Info(ctx, "Shutting down watch")
	<-c.Stop().Done()

	path, err := audit.SummarizeToday()
	if err != nil {
		logger.Warn(context.Background(), "Failed to write daily summary", "error", err)
	} else if path != "" {
		logger.Info(context.Background(), "Daily summary written", "path", path)
	}
	return nil
}

func forecastAll(ctx context.Context, cfg *store.Config, fc interfaces.Forecaster) {
	for _, sym := range cfg.Watch.Symbols {
		if ctx.Err() != nil {
			return
		}
		resp, err := fc.Forecast(ctx, types.ForecastRequest{Symbol: sym, Exchange: cfg.Exchange})
		if err != nil {
			logger.Warn(ctx, "Watch forecast failed", "symbol", sym, "error", err)
			continue
		}
		f := resp.Prediction.Forecast
		if len(f) == 0 {
			continue
		}
		logger.Info(ctx, "Watch forecast", "request_id", resp.RequestID, "ticker", resp.Ticker,
			"final_forecast", f[len(f)-1], "sentiment", resp.Sentiment.OverallScore)
	}
}

func ist() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}
