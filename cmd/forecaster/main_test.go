package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-forecaster/internal/store"
	"sentiment-forecaster/internal/types"
)

type fakeForecaster struct {
	mu   sync.Mutex
	seen []types.ForecastRequest
}

func (f *fakeForecaster) Forecast(_ context.Context, req types.ForecastRequest) (*types.ForecastResponse, error) {
	f.mu.Lock()
	f.seen = append(f.seen, req)
	f.mu.Unlock()
	if req.Symbol == "BAD" {
		return nil, types.ErrInvalidInstrument
	}
	return &types.ForecastResponse{Ticker: req.Symbol + ".NS", Prediction: types.StockPrediction{Forecast: []float64{101}}}, nil
}

func (f *fakeForecaster) AnalyzeText(context.Context, string) (types.TextAnalysis, error) {
	return types.TextAnalysis{}, errors.New("unused")
}

func (f *fakeForecaster) Info(context.Context, types.InfoRequest) (*types.InstrumentInfo, error) {
	return nil, errors.New("unused")
}

func TestPeriodTableFollowsOrder(t *testing.T) {
	table := periodTable()
	require.Len(t, table, 10)
	assert.Equal(t, "1d", table[0].Period)
	assert.Equal(t, "max", table[len(table)-1].Period)
	assert.Contains(t, table[2].Intervals, "1d")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if code := writeJSON(&buf, map[string][]string{"stocks": {"TCS"}}); code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	var got map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"TCS"}, got["stocks"])
}

func TestForecastAllContinuesPastFailures(t *testing.T) {
	cfg := store.Defaults()
	cfg.Watch.Symbols = []string{"TCS", "BAD", "INFY"}
	fc := &fakeForecaster{}

	forecastAll(context.Background(), cfg, fc)

	require.Len(t, fc.seen, 3)
	assert.Equal(t, "INFY", fc.seen[2].Symbol)
	assert.Equal(t, "NSE", fc.seen[0].Exchange)
}

func TestForecastAllStopsWhenCancelled(t *testing.T) {
	cfg := store.Defaults()
	cfg.Watch.Symbols = []string{"TCS", "INFY"}
	fc := &fakeForecaster{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	forecastAll(ctx, cfg, fc)
	assert.Empty(t, fc.seen)
}

func TestRunWatchNeedsSymbols(t *testing.T) {
	if err := runWatch(context.Background(), store.Defaults(), &fakeForecaster{}, nil); err == nil {
		t.Error("Expected error for empty watch.symbols")
	}
}
