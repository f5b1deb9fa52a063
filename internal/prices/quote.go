package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"sentiment-forecaster/internal/api"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/types"
)

const (
	yahooQuoteURL = "https://query2.finance.yahoo.com"
	quoteModules  = "price,summaryDetail,defaultKeyStatistics,financialData"
	notAvailable  = "N/A"
)

type quoteField struct {
	label string
	path  string // module.key inside the quoteSummary result
}

var quoteSections = []struct {
	title  string
	fields []quoteField
}{
	{"Market Data", []quoteField{
		{"Current Price", "financialData.currentPrice"},
		{"Previous Close", "summaryDetail.previousClose"},
		{"Open", "summaryDetail.open"},
		{"Day Low", "summaryDetail.dayLow"},
		{"Day High", "summaryDetail.dayHigh"},
		{"52 Week Low", "summaryDetail.fiftyTwoWeekLow"},
		{"52 Week High", "summaryDetail.fiftyTwoWeekHigh"},
		{"50-Day Average", "summaryDetail.fiftyDayAverage"},
	}},
	{"Volume and Shares", []quoteField{
		{"Volume", "summaryDetail.volume"},
		{"Regular Market Volume", "price.regularMarketVolume"},
		{"Shares Outstanding", "defaultKeyStatistics.sharesOutstanding"},
		{"Implied Shares Outstanding", "defaultKeyStatistics.impliedSharesOutstanding"},
		{"Float Shares", "defaultKeyStatistics.floatShares"},
	}},
	{"Dividends and Yield", []quoteField{
		{"Dividend Rate", "summaryDetail.dividendRate"},
		{"Dividend Yield", "summaryDetail.dividendYield"},
		{"Payout Ratio", "summaryDetail.payoutRatio"},
	}},
	{"Valuation and Ratios", []quoteField{
		{"Market Cap", "summaryDetail.marketCap"},
		{"Enterprise Value", "defaultKeyStatistics.enterpriseValue"},
		{"Price to Book", "defaultKeyStatistics.priceToBook"},
		{"Debt to Equity", "financialData.debtToEquity"},
		{"Gross Margins", "financialData.grossMargins"},
		{"Profit Margins", "financialData.profitMargins"},
	}},
	{"Financial Performance", []quoteField{
		{"Total Revenue", "financialData.totalRevenue"},
		{"Revenue Per Share", "financialData.revenuePerShare"},
		{"Total Cash", "financialData.totalCash"},
		{"Total Debt", "financialData.totalDebt"},
		{"Earnings Growth", "financialData.earningsGrowth"},
		{"Revenue Growth", "financialData.revenueGrowth"},
		{"Return on Assets", "financialData.returnOnAssets"},
		{"Return on Equity", "financialData.returnOnEquity"},
	}},
	{"Cash Flow", []quoteField{
		{"Free Cash Flow", "financialData.freeCashflow"},
		{"Operating Cash Flow", "financialData.operatingCashflow"},
	}},
	{"Analyst Targets", []quoteField{
		{"Target High Price", "financialData.targetHighPrice"},
		{"Target Low Price", "financialData.targetLowPrice"},
		{"Target Mean Price", "financialData.targetMeanPrice"},
		{"Target Median Price", "financialData.targetMedianPrice"},
	}},
}

// YahooQuoteSource reads key statistics from the Yahoo quoteSummary endpoint
type YahooQuoteSource struct {
	client  *api.Client
	baseURL string
	retry   *api.RetryConfig
}

var _ interfaces.QuoteSource = (*YahooQuoteSource)(nil)

func NewYahooQuoteSource(client *api.Client, baseURL string) *YahooQuoteSource {
	if baseURL == "" {
		baseURL = yahooQuoteURL
	}
	return &YahooQuoteSource{client: client, baseURL: baseURL, retry: api.DefaultRetryConfig()}
}

func (qs *YahooQuoteSource) FetchInfo(ctx context.Context, ticker string) (*types.InstrumentInfo, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		qs.baseURL, url.PathEscape(ticker), url.QueryEscape(quoteModules))

	req := api.NewRequest(http.MethodGet, u).WithContext(ctx)
	for k, v := range api.YahooFinanceHeaders() {
		req.WithHeader(k, v)
	}
	resp, err := qs.client.DoWithRetry(req, qs.retry)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo quoteSummary %s: %w", types.ErrQuoteFetch, ticker, err)
	}
	return parseQuoteSummary(ticker, resp.Body)
}

// parseQuoteSummary maps a quoteSummary response onto the fixed section
// layout. Missing statistics are kept as "N/A" so every section has the
// same fields for every instrument.
func parseQuoteSummary(ticker string, body []byte) (*types.InstrumentInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: yahoo quoteSummary %s: invalid JSON", types.ErrQuoteFetch, ticker)
	}
	if desc := gjson.GetBytes(body, "quoteSummary.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("%w: yahoo quoteSummary %s: %s", types.ErrQuoteFetch, ticker, desc.String())
	}
	result := gjson.GetBytes(body, "quoteSummary.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: yahoo quoteSummary %s: empty result", types.ErrQuoteFetch, ticker)
	}

	info := &types.InstrumentInfo{
		Ticker:   ticker,
		Name:     firstText(result, "price.longName", "price.shortName"),
		Currency: firstText(result, "price.currency", "financialData.financialCurrency"),
		Sections: make([]types.InfoSection, 0, len(quoteSections)),
	}
	for _, sec := range quoteSections {
		out := types.InfoSection{Title: sec.title, Fields: make([]types.InfoField, 0, len(sec.fields))}
		for _, f := range sec.fields {
			out.Fields = append(out.Fields, statistic(f.label, result.Get(f.path)))
		}
		info.Sections = append(info.Sections, out)
	}
	return info, nil
}

// statistic reads either a bare number or Yahoo's {"raw": n, "fmt": "..."} pair.
func statistic(label string, v gjson.Result) types.InfoField {
	field := types.InfoField{Label: label, Display: notAvailable}
	raw := v
	if v.IsObject() {
		raw = v.Get("raw")
		if f := v.Get("fmt"); f.Type == gjson.String && f.String() != "" {
			field.Display = f.String()
		}
	}
	if raw.Type == gjson.Number {
		n := raw.Float()
		field.Value = &n
		if field.Display == notAvailable {
			field.Display = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return field
}

func firstText(result gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := result.Get(p).String(); s != "" {
			return s
		}
	}
	return ""
}
