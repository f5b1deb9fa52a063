package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"sentiment-forecaster/internal/api"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/types"
)

const yahooSearchURL = "https://query2.finance.yahoo.com"

// YahooSource reads the news block of the Yahoo Finance search endpoint
type YahooSource struct {
	client  *api.Client
	baseURL string
	count   int
}

var _ interfaces.NewsSource = (*YahooSource)(nil)

// NewYahooSource asks for up to count items per ticker. An empty baseURL
// uses the public endpoint.
func NewYahooSource(client *api.Client, baseURL string, count int) *YahooSource {
	if baseURL == "" {
		baseURL = yahooSearchURL
	}
	if count <= 0 {
		count = 10
	}
	return &YahooSource{client: client, baseURL: baseURL, count: count}
}

func (ys *YahooSource) FetchRecentNews(ctx context.Context, ticker string) ([]json.RawMessage, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=0&newsCount=%d",
		ys.baseURL, url.QueryEscape(ticker), ys.count)

	resp, err := ys.client.GET(ctx, u, api.YahooFinanceHeaders())
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo search %s: %v", types.ErrNewsFetch, ticker, err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("%w: yahoo search %s: invalid JSON", types.ErrNewsFetch, ticker)
	}

	var out []json.RawMessage
	gjson.GetBytes(resp.Body, "news").ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			out = append(out, json.RawMessage(item.Raw))
		}
		return true
	})
	return out, nil
}
