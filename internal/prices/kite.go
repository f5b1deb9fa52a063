package prices

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/types"
)

// kiteAPI is the part of the Kite Connect client used for history
type kiteAPI interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
}

// kiteIntervals maps chart intervals to Kite candle intervals and the
// longest range Kite serves per request for each.
var kiteIntervals = map[string]struct {
	name    string
	maxDays int
}{
	"1m":  {"minute", 60},
	"5m":  {"5minute", 100},
	"15m": {"15minute", 200},
	"30m": {"30minute", 200},
	"60m": {"60minute", 400},
	"1d":  {"day", 2000},
}

// KiteSource reads historical candles from Zerodha Kite Connect
type KiteSource struct {
	kc     kiteAPI
	mapper *instrumentMapper
	loadMu sync.Mutex
	loaded map[string]bool
	now    func() time.Time
}

var _ interfaces.PriceSource = (*KiteSource)(nil)

func NewKiteSource(apiKey, accessToken string) *KiteSource {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return newKiteSource(kc)
}

func newKiteSource(kc kiteAPI) *KiteSource {
	return &KiteSource{
		kc:     kc,
		mapper: newInstrumentMapper(),
		loaded: make(map[string]bool),
		now:    time.Now,
	}
}

func (ks *KiteSource) FetchHistory(ctx context.Context, ticker, period, interval string) ([]types.Bar, error) {
	iv, ok := kiteIntervals[interval]
	if !ok {
		return nil, fmt.Errorf("%w: interval %q not served by kite", types.ErrInvalidInterval, interval)
	}
	symbol, exchange := splitTicker(ticker)

	token, err := ks.token(ctx, exchange, symbol)
	if err != nil {
		return nil, err
	}

	to := ks.now()
	from, err := periodStart(to, period)
	if err != nil {
		return nil, err
	}

	var bars []types.Bar
	for start := from; start.Before(to); {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrPriceFetch, err)
		}
		end := start.AddDate(0, 0, iv.maxDays)
		if end.After(to) {
			end = to
		}
		candles, err := ks.kc.GetHistoricalData(token, iv.name, start, end, false, false)
		if err != nil {
			return nil, fmt.Errorf("%w: kite history %s %s..%s: %v", types.ErrPriceFetch, ticker,
				start.Format("2006-01-02"), end.Format("2006-01-02"), err)
		}
		for _, c := range candles {
			if n := len(bars); n > 0 && !c.Date.Time.After(bars[n-1].Date) {
				continue
			}
			bars = append(bars, types.Bar{
				Date:   c.Date.Time,
				Open:   c.Open,
				High:   c.High,
				Low:    c.Low,
				Close:  c.Close,
				Volume: float64(c.Volume),
			})
		}
		start = end
	}

	logger.Debug(ctx, "Kite history fetched", "ticker", ticker, "interval", iv.name, "bars", len(bars))
	return bars, nil
}

// token resolves a trading symbol, loading the exchange's instrument list on
// first use.
func (ks *KiteSource) token(ctx context.Context, exchange, symbol string) (int, error) {
	if t, ok := ks.mapper.getToken(exchange, symbol); ok {
		return t, nil
	}

	ks.loadMu.Lock()
	defer ks.loadMu.Unlock()
	if !ks.loaded[exchange] {
		instruments, err := ks.kc.GetInstrumentsByExchange(exchange)
		if err != nil {
			return 0, fmt.Errorf("%w: kite instruments %s: %v", types.ErrPriceFetch, exchange, err)
		}
		for _, in := range instruments {
			ks.mapper.addMapping(exchange, in.Tradingsymbol, in.InstrumentToken)
		}
		ks.loaded[exchange] = true
		logger.Info(ctx, "Loaded kite instruments", "exchange", exchange, "count", len(instruments))
	}

	t, ok := ks.mapper.getToken(exchange, symbol)
	if !ok {
		return 0, fmt.Errorf("%w: %s not listed on %s", types.ErrInvalidInstrument, symbol, exchange)
	}
	return t, nil
}

// splitTicker maps "TCS.NS" to ("TCS", "NSE") and "TCS.BO" to ("TCS", "BSE")
func splitTicker(ticker string) (symbol, exchange string) {
	switch {
	case strings.HasSuffix(ticker, ".BO"):
		return strings.TrimSuffix(ticker, ".BO"), "BSE"
	case strings.HasSuffix(ticker, ".NS"):
		return strings.TrimSuffix(ticker, ".NS"), "NSE"
	default:
		return ticker, "NSE"
	}
}

// periodStart is the first instant of a lookback period ending at to
func periodStart(to time.Time, period string) (time.Time, error) {
	switch period {
	case "1d":
		return to.AddDate(0, 0, -1), nil
	case "5d":
		return to.AddDate(0, 0, -5), nil
	case "1mo":
		return to.AddDate(0, -1, 0), nil
	case "3mo":
		return to.AddDate(0, -3, 0), nil
	case "6mo":
		return to.AddDate(0, -6, 0), nil
	case "1y":
		return to.AddDate(-1, 0, 0), nil
	case "2y":
		return to.AddDate(-2, 0, 0), nil
	case "5y":
		return to.AddDate(-5, 0, 0), nil
	case "10y":
		return to.AddDate(-10, 0, 0), nil
	case "max":
		return to.AddDate(-20, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown period %q", types.ErrInvalidInterval, period)
	}
}
