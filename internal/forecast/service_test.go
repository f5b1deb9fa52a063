package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-forecaster/internal/forecastlog"
	"sentiment-forecaster/internal/news"
	"sentiment-forecaster/internal/sentiment"
	"sentiment-forecaster/internal/types"
	"sentiment-forecaster/internal/universe"
)

type fakePrices struct {
	mu    sync.Mutex
	calls []string
	days  int
	err   error
}

func (f *fakePrices) FetchHistory(_ context.Context, ticker, period, interval string) ([]types.Bar, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker+" "+period+" "+interval)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	vals := wave(f.days)
	bars := make([]types.Bar, len(vals))
	for i, v := range vals {
		bars[i] = types.Bar{
			Date:  date(2023, 1, 1).AddDate(0, 0, i).Add(9 * time.Hour),
			Open:  v - 0.5,
			High:  v + 1,
			Low:   v - 1,
			Close: v,
		}
	}
	return bars, nil
}

func (f *fakePrices) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNews struct {
	records []json.RawMessage
	err     error
}

func (f fakeNews) FetchRecentNews(context.Context, string) ([]json.RawMessage, error) {
	return f.records, f.err
}

type codeClassifier struct{ code string }

func (c codeClassifier) Classify(context.Context, string) (types.RawSentiment, error) {
	if c.code == "" {
		return types.RawSentiment{}, errors.New("model offline")
	}
	return sentiment.FromValue(c.code), nil
}

func headlines(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(`{"content":{"title":"Quarterly update","summary":"Results announced"}}`)
	}
	return out
}

func newTestService(prices *fakePrices, src fakeNews, audit *forecastlog.Writer) *Service {
	clf := codeClassifier{code: "1"}
	agg := news.NewAggregator(src, clf, 0)
	return NewService(prices, agg, clf, universe.Default(), Options{
		Model:        ModelOptions{Lags: 5, HorizonDays: 10},
		MaxArticles:  10,
		DisplayCount: 5,
	}, audit)
}

func TestForecastEndToEnd(t *testing.T) {
	dir := t.TempDir()
	prices := &fakePrices{days: 200}
	svc := newTestService(prices, fakeNews{records: headlines(8)}, forecastlog.New(dir))

	resp, err := svc.Forecast(context.Background(), types.ForecastRequest{Symbol: " tcs "})
	require.NoError(t, err)

	assert.Equal(t, "TCS.NS", resp.Ticker)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, 2, prices.callCount(), "display and model history are fetched separately")

	p := resp.Prediction
	assert.Len(t, p.TrainClose, 181)
	assert.Len(t, p.TestClose, 20)
	assert.Len(t, p.Forecast, 30)
	assert.Equal(t, p.TestDates, p.TestPredictionsDates)
	assert.Equal(t, p.TestDates[0], p.ForecastDates[0])
	assert.Len(t, resp.Diagnostics.BaselineForecast, 30)

	last := p.TestClose[len(p.TestClose)-1]
	first := p.Forecast[len(p.TestClose)]
	assert.GreaterOrEqual(t, first, last*0.99-1e-9)
	assert.LessOrEqual(t, first, last*1.01+1e-9)

	assert.Equal(t, 0.5, resp.Sentiment.OverallScore)
	assert.Equal(t, types.Positive, resp.Sentiment.Label)
	assert.Equal(t, 8, resp.Sentiment.NewsCount)
	assert.Len(t, resp.Sentiment.RecentNews, 5)

	assert.Len(t, resp.Historical.Close, 200)
	assert.Equal(t, "2023-01-01", resp.Historical.Dates[0])
	assert.Equal(t, 5, resp.Diagnostics.Lags)
	assert.Greater(t, resp.Diagnostics.TestRMSE, 0.0)
	assert.Greater(t, resp.Diagnostics.TrainRMSE, 0.0)
	assert.Less(t, resp.Diagnostics.TrainRMSE, 1.0, "in-sample fit tracks the wave within its noise")

	_, err = json.Marshal(resp)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), resp.RequestID)
}

func TestForecastSharesFetchWhenSeriesMatch(t *testing.T) {
	prices := &fakePrices{days: 200}
	svc := newTestService(prices, fakeNews{}, nil)

	resp, err := svc.Forecast(context.Background(), types.ForecastRequest{Symbol: "INFY", Exchange: "bse", Period: "2y", Interval: "1d"})
	require.NoError(t, err)
	assert.Equal(t, "INFY.BO", resp.Ticker)
	assert.Equal(t, 1, prices.callCount())
}

func TestForecastDegradesWithoutNews(t *testing.T) {
	svc := newTestService(&fakePrices{days: 200}, fakeNews{err: types.ErrNewsFetch}, nil)

	resp, err := svc.Forecast(context.Background(), types.ForecastRequest{Symbol: "SBIN"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.Sentiment.OverallScore)
	assert.Equal(t, types.Neutral, resp.Sentiment.Label)
	assert.Empty(t, resp.Sentiment.RecentNews)

	// without sentiment the baseline passes through unless a band applies
	assert.Len(t, resp.Prediction.Forecast, len(resp.Diagnostics.BaselineForecast))
}

func TestForecastRejectsBeforeFetching(t *testing.T) {
	tests := []struct {
		name string
		req  types.ForecastRequest
		want error
	}{
		{"unknown symbol", types.ForecastRequest{Symbol: "XYZ"}, types.ErrInvalidInstrument},
		{"empty symbol", types.ForecastRequest{}, types.ErrInvalidInstrument},
		{"unknown exchange", types.ForecastRequest{Symbol: "TCS", Exchange: "NYSE"}, types.ErrInvalidInstrument},
		{"unknown interval", types.ForecastRequest{Symbol: "TCS", Interval: "7d"}, types.ErrInvalidInterval},
		{"interval not offered", types.ForecastRequest{Symbol: "TCS", Period: "1d", Interval: "1d"}, types.ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := &fakePrices{days: 200}
			svc := newTestService(prices, fakeNews{}, nil)

			resp, err := svc.Forecast(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, resp)
			assert.Equal(t, 0, prices.callCount())
		})
	}
}

func TestForecastPriceFailureIsFatal(t *testing.T) {
	svc := newTestService(&fakePrices{err: errors.New("connection reset")}, fakeNews{records: headlines(2)}, nil)

	resp, err := svc.Forecast(context.Background(), types.ForecastRequest{Symbol: "ITC"})
	if !errors.Is(err, types.ErrPriceFetch) {
		t.Errorf("Expected ErrPriceFetch, got %v", err)
	}
	assert.Nil(t, resp)
}

func TestForecastKeepsSourceErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"interval the source lacks", fmt.Errorf("%w: kite has no 90m candles", types.ErrInvalidInterval)},
		{"symbol the source lacks", fmt.Errorf("%w: NSE:TCS not listed", types.ErrInvalidInstrument)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakePrices{err: tt.err}, fakeNews{}, nil)

			_, err := svc.Forecast(context.Background(), types.ForecastRequest{Symbol: "TCS", Period: "1d", Interval: "90m"})
			if !errors.Is(err, types.ErrPriceFetch) {
				t.Errorf("Expected ErrPriceFetch, got %v", err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected source error kind to survive, got %v", err)
			}
		})
	}
}

func TestForecastShortHistory(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(&fakePrices{days: 8}, fakeNews{}, forecastlog.New(dir))

	resp, err := svc.Forecast(context.Background(), types.ForecastRequest{Symbol: "LT"})
	assert.ErrorIs(t, err, types.ErrInsufficientHistory)
	assert.Nil(t, resp)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "forecast_failed"))
}

func TestAnalyzeText(t *testing.T) {
	svc := NewService(nil, nil, codeClassifier{code: "3"}, nil, Options{}, nil)

	res, err := svc.AnalyzeText(context.Background(), "  Guidance cut again ")
	require.NoError(t, err)
	assert.Equal(t, -0.5, res.Score)
	assert.Equal(t, types.Negative, res.Label)
	assert.Equal(t, "numeric_code", res.Kind)
	assert.Equal(t, "Guidance cut again", res.Text)

	_, err = svc.AnalyzeText(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrClassifier)

	failing := NewService(nil, nil, codeClassifier{}, nil, Options{}, nil)
	_, err = failing.AnalyzeText(context.Background(), "anything")
	assert.ErrorIs(t, err, types.ErrClassifier)
}

type fakeQuotes struct {
	calls []string
	info  *types.InstrumentInfo
	err   error
}

func (f *fakeQuotes) FetchInfo(_ context.Context, ticker string) (*types.InstrumentInfo, error) {
	f.calls = append(f.calls, ticker)
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	return &info, nil
}

func TestInfo(t *testing.T) {
	quotes := &fakeQuotes{info: &types.InstrumentInfo{
		Currency: "INR",
		Sections: []types.InfoSection{{Title: "Market Data"}},
	}}
	svc := newTestService(&fakePrices{}, fakeNews{}, nil).WithQuotes(quotes)

	info, err := svc.Info(context.Background(), types.InfoRequest{Symbol: " wipro ", Exchange: "bse"})
	require.NoError(t, err)
	assert.Equal(t, []string{"WIPRO.BO"}, quotes.calls)
	assert.Equal(t, "WIPRO.BO", info.Ticker)
	assert.Equal(t, "BSE", info.Exchange)
	assert.Equal(t, "Wipro Ltd", info.Name, "universe name fills a missing issuer name")
	assert.Len(t, info.Sections, 1)
}

func TestInfoRejectsBeforeFetching(t *testing.T) {
	quotes := &fakeQuotes{info: &types.InstrumentInfo{}}
	svc := newTestService(&fakePrices{}, fakeNews{}, nil).WithQuotes(quotes)

	for _, req := range []types.InfoRequest{{Symbol: "XYZ"}, {}, {Symbol: "TCS", Exchange: "NYSE"}} {
		_, err := svc.Info(context.Background(), req)
		if !errors.Is(err, types.ErrInvalidInstrument) {
			t.Errorf("Expected ErrInvalidInstrument for %+v, got %v", req, err)
		}
	}
	assert.Empty(t, quotes.calls)
}

func TestInfoSourceFailures(t *testing.T) {
	svc := newTestService(&fakePrices{}, fakeNews{}, nil)
	_, err := svc.Info(context.Background(), types.InfoRequest{Symbol: "TCS"})
	assert.ErrorIs(t, err, types.ErrQuoteFetch)

	cause := errors.New("crumb expired")
	svc.WithQuotes(&fakeQuotes{err: cause})
	_, err = svc.Info(context.Background(), types.InfoRequest{Symbol: "TCS"})
	assert.ErrorIs(t, err, types.ErrQuoteFetch)
	assert.ErrorIs(t, err, cause)
}
