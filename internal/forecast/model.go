package forecast

import (
	"context"
	"fmt"

	"sentiment-forecaster/internal/autoreg"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/types"
)

const (
	DefaultLags        = 250
	DefaultHorizonDays = 90

	// conditionWarning is the design matrix condition number above which a
	// fit is reported as ill-conditioned
	conditionWarning = 1e12
)

type ModelOptions struct {
	Lags        int
	HorizonDays int
}

// Baseline is the unadjusted model output. Predictions cover the test dates;
// Forecast covers the test dates plus HorizonDays more.
type Baseline struct {
	Train       []types.PricePoint
	Test        []types.PricePoint
	Predictions []types.PricePoint
	Forecast    []types.PricePoint
	Model       *autoreg.Model
}

// TestEnd is the last observed date.
func (b *Baseline) TestEnd() types.PricePoint {
	return b.Test[len(b.Test)-1]
}

// FitAndForecast splits a gap-filled daily history, fits an AR model on the
// train part and forecasts dynamically from the start of the test part.
func FitAndForecast(ctx context.Context, history []types.PricePoint, opts ModelOptions) (*Baseline, error) {
	if opts.Lags <= 0 {
		opts.Lags = DefaultLags
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = DefaultHorizonDays
	}

	train, test := Split(history)
	if need := 2*opts.Lags + 1; len(train) < need {
		return nil, fmt.Errorf("%w: %d training points for %d lags, need %d",
			types.ErrInsufficientHistory, len(train), opts.Lags, need)
	}

	model, err := autoreg.Fit(values(train), opts.Lags)
	if err != nil {
		return nil, err
	}
	if model.Cond > conditionWarning {
		logger.Warn(ctx, "Ill-conditioned autoregression", "lags", opts.Lags, "condition", model.Cond)
	}

	start := len(train) - 1
	end := len(history) - 1 + opts.HorizonDays
	path, err := model.Predict(start, end)
	if err != nil {
		return nil, err
	}

	origin := test[0].Date
	forecast := make([]types.PricePoint, len(path))
	for i, v := range path {
		forecast[i] = types.PricePoint{Date: origin.AddDate(0, 0, i), Value: v}
	}

	return &Baseline{
		Train:       train,
		Test:        test,
		Predictions: forecast[:len(test)],
		Forecast:    forecast,
		Model:       model,
	}, nil
}
