package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sentiment-forecaster/internal/forecastlog"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/trace"
	"sentiment-forecaster/internal/types"
	"sentiment-forecaster/internal/universe"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		symbol     = flag.String("symbol", "", "symbol to forecast, e.g. TCS")
		exchange   = flag.String("exchange", "", "NSE or BSE (default from config)")
		period     = flag.String("period", "1y", "lookback period for the historical series")
		interval   = flag.String("interval", "1d", "sampling interval for the historical series")
		outPath    = flag.String("out", "", "write the JSON response to this file instead of stdout")
		list       = flag.Bool("list", false, "list known symbols and exit")
		periods    = flag.Bool("periods", false, "list periods and their intervals and exit")
		analyze    = flag.String("analyze", "", "score one text and exit")
		info       = flag.Bool("info", false, "print key statistics for -symbol instead of a forecast")
		watch      = flag.Bool("watch", false, "forecast watch.symbols on watch.schedule until interrupted")
	)
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		return 1
	}

	if *periods {
		return writeJSON(os.Stdout, periodTable())
	}
	if *list {
		u, err := initializeUniverse(ctx, cfg)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to load universe", err)
			return 1
		}
		return writeJSON(os.Stdout, map[string][]string{"stocks": u.Symbols()})
	}

	audit := forecastlog.New("")
	compressOldLogs(ctx, audit)

	fc, cleanup, err := initializeForecaster(ctx, cfg, audit)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize forecaster", err)
		return 1
	}
	defer cleanup()

	switch {
	case *analyze != "":
		res, err := fc.AnalyzeText(ctx, *analyze)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
			return 1
		}
		return writeJSON(os.Stdout, res)

	case *watch:
		if err := runWatch(ctx, cfg, fc, audit); err != nil {
			logger.ErrorWithErr(ctx, "Watch mode failed", err)
			return 1
		}
		return 0

	case *info && *symbol != "":
		res, err := fc.Info(ctx, types.InfoRequest{Symbol: *symbol, Exchange: *exchange})
		if err != nil {
			fmt.Fprintf(os.Stderr, "info %s: %v\n", *symbol, err)
			return 1
		}
		return output(ctx, *outPath, res)

	case *symbol != "":
		resp, err := fc.Forecast(ctx, types.ForecastRequest{
			Symbol:   *symbol,
			Exchange: *exchange,
			Period:   *period,
			Interval: *interval,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "forecast %s: %v\n", *symbol, err)
			return 1
		}
		return output(ctx, *outPath, resp)

	default:
		flag.Usage()
		return 2
	}
}

func output(ctx context.Context, path string, v any) int {
	if path == "" {
		return writeJSON(os.Stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to create output file", err, "path", path)
		return 1
	}
	defer f.Close()
	if code := writeJSON(f, v); code != 0 {
		return code
	}
	logger.Info(ctx, "Forecast written", "path", path)
	return 0
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type periodEntry struct {
	Period    string   `json:"period"`
	Intervals []string `json:"intervals"`
}

func periodTable() []periodEntry {
	table := universe.Periods()
	out := make([]periodEntry, 0, len(table))
	for _, p := range universe.PeriodOrder {
		out = append(out, periodEntry{Period: p, Intervals: table[p]})
	}
	return out
}
