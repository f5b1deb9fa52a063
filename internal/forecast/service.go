package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sentiment-forecaster/internal/forecastlog"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/news"
	"sentiment-forecaster/internal/sentiment"
	"sentiment-forecaster/internal/store"
	"sentiment-forecaster/internal/ta"
	"sentiment-forecaster/internal/types"
	"sentiment-forecaster/internal/universe"
)

const (
	DefaultPeriod   = "1y"
	DefaultInterval = "1d"
	dateLayout      = "2006-01-02"
)

type Options struct {
	Exchange      string
	ModelPeriod   string
	ModelInterval string
	Model         ModelOptions
	MaxArticles   int
	DisplayCount  int
}

func OptionsFromConfig(cfg *store.Config) Options {
	return Options{
		Exchange:      cfg.Exchange,
		ModelPeriod:   cfg.Prices.ModelPeriod,
		ModelInterval: cfg.Prices.ModelInterval,
		Model: ModelOptions{
			Lags:        cfg.Model.Lags,
			HorizonDays: cfg.Model.HorizonDays,
		},
		MaxArticles:  cfg.News.MaxArticles,
		DisplayCount: cfg.News.DisplayCount,
	}
}

// Service answers forecast requests for instruments in a universe.
type Service struct {
	prices     interfaces.PriceSource
	news       *news.Aggregator
	classifier interfaces.Classifier
	universe   *universe.Universe
	validate   *validator.Validate
	quotes     interfaces.QuoteSource
	audit      *forecastlog.Writer
	opts       Options
	now        func() time.Time
}

var _ interfaces.Forecaster = (*Service)(nil)

// NewService wires a forecast service. A nil aggregator means neutral
// sentiment and a nil audit writer disables the audit log.
func NewService(prices interfaces.PriceSource, agg *news.Aggregator, classifier interfaces.Classifier,
	u *universe.Universe, opts Options, audit *forecastlog.Writer) *Service {
	if opts.Exchange == "" {
		opts.Exchange = "NSE"
	}
	if opts.ModelPeriod == "" {
		opts.ModelPeriod = "2y"
	}
	if opts.ModelInterval == "" {
		opts.ModelInterval = "1d"
	}
	if opts.Model.Lags <= 0 {
		opts.Model.Lags = DefaultLags
	}
	if opts.Model.HorizonDays <= 0 {
		opts.Model.HorizonDays = DefaultHorizonDays
	}
	if agg == nil {
		agg = news.NewAggregator(nil, nil, 0)
	}
	if classifier == nil {
		classifier = sentiment.Passthrough{}
	}
	if u == nil {
		u = universe.Default()
	}
	return &Service{
		prices:     prices,
		news:       agg,
		classifier: classifier,
		universe:   u,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		audit:      audit,
		opts:       opts,
		now:        time.Now,
	}
}

// WithQuotes sets the key statistics source used by Info.
func (s *Service) WithQuotes(quotes interfaces.QuoteSource) *Service {
	s.quotes = quotes
	return s
}

// Forecast validates req, fetches prices and news concurrently, fits the
// model and returns the sentiment-adjusted forecast. It returns either a
// complete response or an error.
func (s *Service) Forecast(ctx context.Context, req types.ForecastRequest) (*types.ForecastResponse, error) {
	req = s.normalize(req)
	requestID := uuid.NewString()

	resp, err := s.forecast(ctx, req, requestID)
	s.record(ctx, req, requestID, resp, err)
	return resp, err
}

func (s *Service) normalize(req types.ForecastRequest) types.ForecastRequest {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Exchange = strings.ToUpper(strings.TrimSpace(req.Exchange))
	if req.Exchange == "" {
		req.Exchange = s.opts.Exchange
	}
	if req.Period == "" {
		req.Period = DefaultPeriod
	}
	if req.Interval == "" {
		req.Interval = DefaultInterval
	}
	return req
}

// Validate checks a normalized request against the universe and the
// period/interval table without fetching anything.
func (s *Service) Validate(ctx context.Context, req types.ForecastRequest) error {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Period" || fe.Field() == "Interval" {
					return fmt.Errorf("%w: %s", types.ErrInvalidInterval, fe.Error())
				}
			}
		}
		return fmt.Errorf("%w: %v", types.ErrInvalidInstrument, err)
	}
	if _, err := s.universe.Lookup(req.Symbol); err != nil {
		return err
	}
	return universe.ValidateInterval(req.Period, req.Interval)
}

func (s *Service) forecast(ctx context.Context, req types.ForecastRequest, requestID string) (*types.ForecastResponse, error) {
	if err := s.Validate(ctx, req); err != nil {
		return nil, err
	}
	if s.prices == nil {
		return nil, fmt.Errorf("%w: no price source configured", types.ErrPriceFetch)
	}
	ticker := universe.Ticker(req.Symbol, req.Exchange)

	var (
		display, modelBars []types.Bar
		sent               types.SentimentResult
	)
	sameSeries := req.Period == s.opts.ModelPeriod && req.Interval == s.opts.ModelInterval

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bars, err := s.fetch(gctx, ticker, req.Period, req.Interval)
		display = bars
		return err
	})
	if !sameSeries {
		g.Go(func() error {
			bars, err := s.fetch(gctx, ticker, s.opts.ModelPeriod, s.opts.ModelInterval)
			modelBars = bars
			return err
		})
	}
	g.Go(func() error {
		sent = s.news.Aggregate(gctx, ticker, s.opts.MaxArticles, s.opts.DisplayCount)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if sameSeries {
		modelBars = display
	}

	history := DailyCloses(modelBars)
	baseline, err := FitAndForecast(ctx, history, s.opts.Model)
	if err != nil {
		return nil, err
	}

	last := baseline.TestEnd()
	adjusted := Adjust(baseline.Forecast, last.Date, last.Value, sent.Score)
	final := adjusted[len(adjusted)-1].Value

	testVals := values(baseline.Test)
	trainVals := values(baseline.Train)
	diag := types.Diagnostics{
		Lags:             baseline.Model.Lags,
		NObs:             baseline.Model.NObs,
		Sigma2:           baseline.Model.Sigma2,
		TrainRMSE:        finite(ta.RMSE(trainVals[baseline.Model.Lags:], baseline.Model.Fitted())),
		TestRMSE:         finite(ta.RMSE(testVals, values(baseline.Predictions))),
		TestMAPE:         finite(ta.MAPE(testVals, values(baseline.Predictions))),
		ReturnVolatility: finite(ta.ReturnVolatility(values(history))),
		BaselineForecast: values(baseline.Forecast),
	}

	logger.Forecast(ctx, ticker, last.Value, final, sent.Score,
		"request_id", requestID,
		"articles", sent.ArticleCount,
		"test_rmse", diag.TestRMSE,
	)

	return &types.ForecastResponse{
		RequestID:   requestID,
		Ticker:      ticker,
		GeneratedAt: s.now().UTC(),
		Historical:  historical(display, universe.IsIntraday(req.Interval)),
		Prediction: types.StockPrediction{
			TrainDates:           dates(baseline.Train),
			TrainClose:           values(baseline.Train),
			TestDates:            dates(baseline.Test),
			TestClose:            testVals,
			ForecastDates:        dates(adjusted),
			Forecast:             values(adjusted),
			TestPredictionsDates: dates(baseline.Predictions),
			TestPredictions:      values(baseline.Predictions),
		},
		Sentiment: types.SentimentAnalysis{
			OverallScore: sent.Score,
			Label:        sentiment.LabelFor(sent.Score),
			NewsCount:    sent.ArticleCount,
			RecentNews:   sent.Articles,
		},
		Diagnostics: diag,
	}, nil
}

func (s *Service) fetch(ctx context.Context, ticker, period, interval string) ([]types.Bar, error) {
	bars, err := s.prices.FetchHistory(ctx, ticker, period, interval)
	if err != nil {
		if errors.Is(err, types.ErrPriceFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s/%s: %w", types.ErrPriceFetch, ticker, period, interval, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s %s/%s", types.ErrPriceFetch, ticker, period, interval)
	}
	return bars, nil
}

func (s *Service) record(ctx context.Context, req types.ForecastRequest, requestID string, resp *types.ForecastResponse, err error) {
	if s.audit == nil {
		return
	}
	e := forecastlog.Entry{
		RequestID:   requestID,
		Ticker:      universe.Ticker(req.Symbol, req.Exchange),
		Period:      req.Period,
		Interval:    req.Interval,
		Lags:        s.opts.Model.Lags,
		HorizonDays: s.opts.Model.HorizonDays,
		Err:         err,
	}
	if resp != nil {
		p := resp.Prediction
		e.LastPrice = p.TestClose[len(p.TestClose)-1]
		e.FinalForecast = p.Forecast[len(p.Forecast)-1]
		e.Sentiment = resp.Sentiment.OverallScore
		e.Label = string(resp.Sentiment.Label)
		e.ArticleCount = resp.Sentiment.NewsCount
		e.TestRMSE = resp.Diagnostics.TestRMSE
	}
	if aerr := s.audit.Append(e); aerr != nil {
		logger.Warn(ctx, "Failed to write forecast audit entry", "request_id", requestID, "error", aerr)
	}
}

// Info returns the grouped key statistics of a known instrument. The request
// is validated against the universe before anything is fetched.
func (s *Service) Info(ctx context.Context, req types.InfoRequest) (*types.InstrumentInfo, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Exchange = strings.ToUpper(strings.TrimSpace(req.Exchange))
	if req.Exchange == "" {
		req.Exchange = s.opts.Exchange
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInstrument, err)
	}
	in, err := s.universe.Lookup(req.Symbol)
	if err != nil {
		return nil, err
	}
	if s.quotes == nil {
		return nil, fmt.Errorf("%w: no quote source configured", types.ErrQuoteFetch)
	}

	ticker := universe.Ticker(req.Symbol, req.Exchange)
	info, err := s.quotes.FetchInfo(ctx, ticker)
	if err != nil {
		if errors.Is(err, types.ErrQuoteFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", types.ErrQuoteFetch, ticker, err)
	}
	info.Ticker = ticker
	info.Exchange = req.Exchange
	if info.Name == "" {
		info.Name = in.Name
	}
	return info, nil
}

// AnalyzeText scores a single text with the configured classifier.
func (s *Service) AnalyzeText(ctx context.Context, text string) (types.TextAnalysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.TextAnalysis{}, fmt.Errorf("%w: empty text", types.ErrClassifier)
	}
	raw, err := s.classifier.Classify(ctx, text)
	if err != nil {
		if !errors.Is(err, types.ErrClassifier) {
			err = fmt.Errorf("%w: %v", types.ErrClassifier, err)
		}
		return types.TextAnalysis{}, err
	}
	score, label := sentiment.Score(raw, text)
	return types.TextAnalysis{Text: text, Kind: raw.Kind.String(), Score: score, Label: label}, nil
}

func historical(bars []types.Bar, intraday bool) types.HistoricalData {
	h := types.HistoricalData{
		Dates: make([]string, len(bars)),
		Open:  make([]float64, len(bars)),
		High:  make([]float64, len(bars)),
		Low:   make([]float64, len(bars)),
		Close: make([]float64, len(bars)),
	}
	for i, b := range bars {
		if intraday {
			h.Dates[i] = b.Date.Format(time.RFC3339)
		} else {
			h.Dates[i] = b.Date.Format(dateLayout)
		}
		h.Open[i], h.High[i], h.Low[i], h.Close[i] = b.Open, b.High, b.Low, b.Close
	}
	return h
}

func dates(points []types.PricePoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Date.Format(dateLayout)
	}
	return out
}

// finite maps NaN and Inf to 0 so diagnostics stay JSON encodable.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
