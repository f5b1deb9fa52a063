package forecast

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-forecaster/internal/types"
)

// wave is a deterministic noisy oscillation around 100
func wave(n int) []float64 {
	out := make([]float64, n)
	state := uint32(42)
	for i := range out {
		state = state*1664525 + 1013904223
		noise := (float64(state>>8)/float64(1<<24) - 0.5) * 0.6
		out[i] = 100 + 5*math.Cos(0.3*float64(i)) + noise
	}
	return out
}

func TestFitAndForecastShapes(t *testing.T) {
	history := series(date(2023, 1, 1), wave(200)...)

	b, err := FitAndForecast(context.Background(), history, ModelOptions{Lags: 5, HorizonDays: 10})
	require.NoError(t, err)

	assert.Len(t, b.Train, 181)
	assert.Len(t, b.Test, 20)
	require.Len(t, b.Predictions, 20)
	require.Len(t, b.Forecast, 30)

	for i, p := range b.Predictions {
		assert.Equal(t, b.Test[i].Date, p.Date)
		assert.Equal(t, b.Forecast[i], p)
	}
	assert.Equal(t, history[len(history)-1].Date.AddDate(0, 0, 10), b.Forecast[len(b.Forecast)-1].Date)
	assert.Equal(t, history[len(history)-1], b.TestEnd())

	for i := 1; i < len(b.Forecast); i++ {
		if !b.Forecast[i].Date.After(b.Forecast[i-1].Date) {
			t.Fatalf("Expected increasing forecast dates at %d", i)
		}
	}

	// the fitted process should stay near the oscillation it was fitted on
	for _, p := range b.Predictions {
		assert.InDelta(t, 100, p.Value, 15)
	}
}

func TestFitAndForecastDeterministic(t *testing.T) {
	history := series(date(2023, 1, 1), wave(150)...)
	opts := ModelOptions{Lags: 4, HorizonDays: 20}

	a, err := FitAndForecast(context.Background(), history, opts)
	require.NoError(t, err)
	b, err := FitAndForecast(context.Background(), history, opts)
	require.NoError(t, err)
	assert.Equal(t, a.Forecast, b.Forecast)
	assert.Equal(t, a.Predictions, b.Predictions)
}

func TestFitAndForecastInsufficientHistory(t *testing.T) {
	history := series(date(2024, 1, 1), wave(30)...)

	b, err := FitAndForecast(context.Background(), history, ModelOptions{})
	if !errors.Is(err, types.ErrInsufficientHistory) {
		t.Errorf("Expected ErrInsufficientHistory, got %v", err)
	}
	assert.Nil(t, b)

	_, err = FitAndForecast(context.Background(), nil, ModelOptions{Lags: 2})
	assert.ErrorIs(t, err, types.ErrInsufficientHistory)
}

func TestFitAndForecastDefaultLagWindow(t *testing.T) {
	// default lag order needs 501 training points
	short := series(date(2022, 1, 1), wave(550)...)
	_, err := FitAndForecast(context.Background(), short, ModelOptions{})
	assert.ErrorIs(t, err, types.ErrInsufficientHistory)
}
