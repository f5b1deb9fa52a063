package forecastobs

import (
	"context"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/types"
)

// observableForecaster wraps a Forecaster with observability (logging & tracing)
type observableForecaster struct {
	forecaster interfaces.Forecaster
}

// Compile-time interface check
var _ interfaces.Forecaster = (*observableForecaster)(nil)

// Wrap wraps a forecaster with observability middleware
func Wrap(forecaster interfaces.Forecaster) interfaces.Forecaster {
	return &observableForecaster{
		forecaster: forecaster,
	}
}

func (of *observableForecaster) Forecast(ctx context.Context, req types.ForecastRequest) (*types.ForecastResponse, error) {
	op := logger.StartOperation(ctx, "forecast.Forecast",
		"symbol", req.Symbol,
		"exchange", req.Exchange,
		"period", req.Period,
		"interval", req.Interval,
	)

	resp, err := of.forecaster.Forecast(op.GetContext(), req)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}

	op.End(
		"request_id", resp.RequestID,
		"forecast_points", len(resp.Prediction.Forecast),
		"sentiment", resp.Sentiment.OverallScore,
	)
	return resp, nil
}

func (of *observableForecaster) AnalyzeText(ctx context.Context, text string) (types.TextAnalysis, error) {
	op := logger.StartOperation(ctx, "forecast.AnalyzeText", "chars", len(text))

	res, err := of.forecaster.AnalyzeText(op.GetContext(), text)
	if err != nil {
		op.EndWithError(err)
		return types.TextAnalysis{}, err
	}

	op.End("kind", res.Kind, "score", res.Score)
	return res, nil
}

func (of *observableForecaster) Info(ctx context.Context, req types.InfoRequest) (*types.InstrumentInfo, error) {
	op := logger.StartOperation(ctx, "forecast.Info", "symbol", req.Symbol, "exchange", req.Exchange)

	info, err := of.forecaster.Info(op.GetContext(), req)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}

	op.End("ticker", info.Ticker, "sections", len(info.Sections))
	return info, nil
}
