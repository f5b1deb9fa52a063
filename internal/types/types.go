package types

import "time"

// Bar is one OHLC row as returned by a price source.
type Bar struct {
	Date                           time.Time
	Open, High, Low, Close, Volume float64
}

// PricePoint is a dated value: a close, a prediction or a forecast.
type PricePoint struct {
	Date  time.Time
	Value float64
}

type SentimentLabel string

const (
	Positive SentimentLabel = "positive"
	Negative SentimentLabel = "negative"
	Neutral  SentimentLabel = "neutral"
)

// RawKind tags the shape a classifier answered with.
type RawKind int

const (
	Unrecognized RawKind = iota
	NumericCode
	Structured
	TextLabel
	RawNumber
)

func (k RawKind) String() string {
	switch k {
	case NumericCode:
		return "numeric_code"
	case Structured:
		return "structured"
	case TextLabel:
		return "text_label"
	case RawNumber:
		return "raw_number"
	default:
		return "unrecognized"
	}
}

// RawSentiment is the tagged union of classifier outputs. Only the fields
// belonging to Kind are meaningful.
type RawSentiment struct {
	Kind     RawKind
	Code     string  // NumericCode
	Label    string  // Structured, TextLabel
	Score    float64 // Structured
	HasScore bool    // Structured
	Number   float64 // RawNumber
}

type NewsItem struct {
	Title   string         `json:"title"`
	Summary string         `json:"-"`
	Link    string         `json:"link"`
	Score   float64        `json:"sentiment_score"`
	Label   SentimentLabel `json:"sentiment_label"`
}

type SentimentResult struct {
	Score        float64
	Label        SentimentLabel
	Articles     []NewsItem
	ArticleCount int
}

// ForecastRequest is what a caller supplies to get a forecast.
type ForecastRequest struct {
	Symbol   string `json:"stock" validate:"required,max=32"`
	Exchange string `json:"stock_exchange" validate:"omitempty,oneof=NSE BSE"`
	Period   string `json:"period" validate:"omitempty,oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y max"`
	Interval string `json:"interval" validate:"omitempty,oneof=1m 2m 5m 15m 30m 60m 90m 1d 5d 1wk 1mo"`
}

type HistoricalData struct {
	Dates []string  `json:"dates"`
	Open  []float64 `json:"open"`
	High  []float64 `json:"high"`
	Low   []float64 `json:"low"`
	Close []float64 `json:"close"`
}

type StockPrediction struct {
	TrainDates           []string  `json:"train_dates"`
	TrainClose           []float64 `json:"train_close"`
	TestDates            []string  `json:"test_dates"`
	TestClose            []float64 `json:"test_close"`
	ForecastDates        []string  `json:"forecast_dates"`
	Forecast             []float64 `json:"forecast"`
	TestPredictionsDates []string  `json:"test_predictions_dates"`
	TestPredictions      []float64 `json:"test_predictions"`
}

type SentimentAnalysis struct {
	OverallScore float64        `json:"overall_sentiment_score"`
	Label        SentimentLabel `json:"sentiment_label"`
	NewsCount    int            `json:"news_count"`
	RecentNews   []NewsItem     `json:"recent_news"`
}

type Diagnostics struct {
	Lags             int       `json:"lags"`
	NObs             int       `json:"nobs"`
	Sigma2           float64   `json:"sigma2"`
	TrainRMSE        float64   `json:"train_rmse"`
	TestRMSE         float64   `json:"test_rmse"`
	TestMAPE         float64   `json:"test_mape"`
	ReturnVolatility float64   `json:"return_volatility"`
	BaselineForecast []float64 `json:"baseline_forecast"`
}

type ForecastResponse struct {
	RequestID   string            `json:"request_id"`
	Ticker      string            `json:"ticker"`
	GeneratedAt time.Time         `json:"generated_at"`
	Historical  HistoricalData    `json:"historical_data"`
	Prediction  StockPrediction   `json:"stock_prediction"`
	Sentiment   SentimentAnalysis `json:"sentiment_analysis"`
	Diagnostics Diagnostics       `json:"diagnostics"`
}

// TextAnalysis is the result of scoring one free-standing text.
type TextAnalysis struct {
	Text  string         `json:"text"`
	Kind  string         `json:"classifier_output"`
	Score float64        `json:"sentiment_score"`
	Label SentimentLabel `json:"sentiment_label"`
}

// InfoRequest names an instrument whose key statistics are wanted.
type InfoRequest struct {
	Symbol   string `json:"stock" validate:"required,max=32"`
	Exchange string `json:"stock_exchange" validate:"omitempty,oneof=NSE BSE"`
}

// InfoField is one statistic. Value is nil when the source has no number for
// it; Display is the source's formatted text or "N/A".
type InfoField struct {
	Label   string   `json:"label"`
	Value   *float64 `json:"value,omitempty"`
	Display string   `json:"display"`
}

type InfoSection struct {
	Title  string      `json:"title"`
	Fields []InfoField `json:"fields"`
}

// InstrumentInfo groups the key statistics of one instrument.
type InstrumentInfo struct {
	Ticker   string        `json:"ticker"`
	Exchange string        `json:"exchange"`
	Name     string        `json:"issuer_name"`
	Currency string        `json:"currency"`
	Sections []InfoSection `json:"sections"`
}
