package universe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/types"
)

// Instrument is one tradable name known to the forecaster
type Instrument struct {
	Symbol string `csv:"Symbol"`
	Name   string `csv:"Company Name"`
}

// issuerRow is the exchange issuer-list layout, keyed by security code.
type issuerRow struct {
	Code string `csv:"Security Code"`
	Name string `csv:"Issuer Name"`
}

// Universe is the read-only set of known instruments keyed by symbol
type Universe struct {
	instruments map[string]Instrument
}

var defaultInstruments = []Instrument{
	{"RELIANCE", "Reliance Industries Ltd"},
	{"TCS", "Tata Consultancy Services Ltd"},
	{"HDFCBANK", "HDFC Bank Ltd"},
	{"INFY", "Infosys Ltd"},
	{"ICICIBANK", "ICICI Bank Ltd"},
	{"HINDUNILVR", "Hindustan Unilever Ltd"},
	{"SBIN", "State Bank of India"},
	{"BHARTIARTL", "Bharti Airtel Ltd"},
	{"ITC", "ITC Ltd"},
	{"KOTAKBANK", "Kotak Mahindra Bank Ltd"},
	{"LT", "Larsen & Toubro Ltd"},
	{"AXISBANK", "Axis Bank Ltd"},
	{"HCLTECH", "HCL Technologies Ltd"},
	{"ASIANPAINT", "Asian Paints Ltd"},
	{"MARUTI", "Maruti Suzuki India Ltd"},
	{"TITAN", "Titan Company Ltd"},
	{"SUNPHARMA", "Sun Pharmaceutical Industries Ltd"},
	{"BAJFINANCE", "Bajaj Finance Ltd"},
	{"WIPRO", "Wipro Ltd"},
	{"NESTLEIND", "Nestle India Ltd"},
}

// New builds a universe from instruments. Symbols are upper-cased; blank rows are dropped.
func New(instruments []Instrument) *Universe {
	u := &Universe{instruments: make(map[string]Instrument, len(instruments))}
	for _, in := range instruments {
		sym := strings.ToUpper(strings.TrimSpace(in.Symbol))
		if sym == "" {
			continue
		}
		u.instruments[sym] = Instrument{Symbol: sym, Name: strings.TrimSpace(in.Name)}
	}
	return u
}

// Default returns the built-in list of large NSE names
func Default() *Universe {
	return New(defaultInstruments)
}

// LoadCSV reads a `Symbol,Company Name` file, or an exchange issuer list with
// `Security Code,Issuer Name` columns. Other columns are ignored. A missing
// file falls back to the default universe.
func LoadCSV(ctx context.Context, path string) (*Universe, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn(ctx, "Universe file not found, using default stock list", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	u, err := parseCSV(b)
	if err != nil {
		return nil, fmt.Errorf("parse universe %s: %w", path, err)
	}
	if u.Len() == 0 {
		return nil, fmt.Errorf("universe %s has no instruments", path)
	}
	logger.Info(ctx, "Universe loaded", "path", path, "instruments", len(u.instruments))
	return u, nil
}

func parseCSV(b []byte) (*Universe, error) {
	var rows []Instrument
	if err := gocsv.UnmarshalBytes(b, &rows); err != nil {
		return nil, err
	}
	if u := New(rows); u.Len() > 0 {
		return u, nil
	}

	var issuers []issuerRow
	if err := gocsv.UnmarshalBytes(b, &issuers); err != nil {
		return nil, err
	}
	rows = make([]Instrument, 0, len(issuers))
	for _, r := range issuers {
		rows = append(rows, Instrument{Symbol: r.Code, Name: r.Name})
	}
	return New(rows), nil
}

// Lookup returns the instrument for symbol or ErrInvalidInstrument
func (u *Universe) Lookup(symbol string) (Instrument, error) {
	in, ok := u.instruments[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %q is not in the known universe", types.ErrInvalidInstrument, symbol)
	}
	return in, nil
}

// Symbols returns all known symbols, sorted
func (u *Universe) Symbols() []string {
	out := make([]string, 0, len(u.instruments))
	for s := range u.instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (u *Universe) Len() int {
	return len(u.instruments)
}

// Ticker builds the price/news ticker for a symbol on an exchange: BSE gets
// ".BO", everything else ".NS".
func Ticker(symbol, exchange string) string {
	suffix := ".NS"
	if strings.EqualFold(exchange, "BSE") {
		suffix = ".BO"
	}
	return strings.ToUpper(symbol) + suffix
}
