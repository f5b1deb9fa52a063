package prices

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"sentiment-forecaster/internal/api"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/types"
)

const yahooChartURL = "https://query1.finance.yahoo.com"

// YahooSource reads OHLC bars from the Yahoo Finance chart endpoint
type YahooSource struct {
	client  *api.Client
	baseURL string
	retry   *api.RetryConfig
}

var _ interfaces.PriceSource = (*YahooSource)(nil)

// NewYahooSource uses the public endpoint when baseURL is empty
func NewYahooSource(client *api.Client, baseURL string) *YahooSource {
	if baseURL == "" {
		baseURL = yahooChartURL
	}
	return &YahooSource{client: client, baseURL: baseURL, retry: api.DefaultRetryConfig()}
}

func (ys *YahooSource) FetchHistory(ctx context.Context, ticker, period, interval string) ([]types.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s&includePrePost=false&events=div%%2Csplit",
		ys.baseURL, url.PathEscape(ticker), url.QueryEscape(period), url.QueryEscape(interval))

	req := api.NewRequest(http.MethodGet, u).WithContext(ctx)
	for k, v := range api.YahooFinanceHeaders() {
		req.WithHeader(k, v)
	}
	resp, err := ys.client.DoWithRetry(req, ys.retry)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo chart %s: %v", types.ErrPriceFetch, ticker, err)
	}
	return parseChart(ticker, resp.Body)
}

// parseChart turns a chart response into bars, dropping rows without a close.
func parseChart(ticker string, body []byte) ([]types.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: yahoo chart %s: invalid JSON", types.ErrPriceFetch, ticker)
	}
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("%w: yahoo chart %s: %s", types.ErrPriceFetch, ticker, desc.String())
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: yahoo chart %s: empty result", types.ErrPriceFetch, ticker)
	}

	loc := time.FixedZone(result.Get("meta.exchangeTimezoneName").String(), int(result.Get("meta.gmtoffset").Int()))
	stamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]types.Bar, 0, len(stamps))
	for i, ts := range stamps {
		c := at(closes, i)
		if math.IsNaN(c) {
			continue
		}
		bars = append(bars, types.Bar{
			Date:   time.Unix(ts.Int(), 0).In(loc),
			Open:   orElse(at(opens, i), c),
			High:   orElse(at(highs, i), c),
			Low:    orElse(at(lows, i), c),
			Close:  c,
			Volume: orElse(at(volumes, i), 0),
		})
	}
	return bars, nil
}

func at(vals []gjson.Result, i int) float64 {
	if i >= len(vals) || vals[i].Type != gjson.Number {
		return math.NaN()
	}
	return vals[i].Float()
}

func orElse(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
