package interfaces

import (
	"context"

	"sentiment-forecaster/internal/types"
)

type Forecaster interface {
	Forecast(ctx context.Context, req types.ForecastRequest) (*types.ForecastResponse, error)
	AnalyzeText(ctx context.Context, text string) (types.TextAnalysis, error)
	Info(ctx context.Context, req types.InfoRequest) (*types.InstrumentInfo, error)
}
