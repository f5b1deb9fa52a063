package universe

import (
	"fmt"
	"slices"

	"sentiment-forecaster/internal/types"
)

var intraday = []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m"}
var longRange = []string{"1d", "5d", "1wk", "1mo"}

var periods = map[string][]string{
	"1d":  intraday,
	"5d":  intraday,
	"1mo": {"30m", "60m", "90m", "1d"},
	"3mo": longRange,
	"6mo": longRange,
	"1y":  longRange,
	"2y":  longRange,
	"5y":  longRange,
	"10y": longRange,
	"max": longRange,
}

// PeriodOrder lists lookback periods from shortest to longest.
var PeriodOrder = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "max"}

// Periods returns a copy of the period to allowed-intervals table
func Periods() map[string][]string {
	out := make(map[string][]string, len(periods))
	for p, iv := range periods {
		out[p] = slices.Clone(iv)
	}
	return out
}

// ValidateInterval reports whether interval may be requested for period
func ValidateInterval(period, interval string) error {
	allowed, ok := periods[period]
	if !ok {
		return fmt.Errorf("%w: unknown period %q", types.ErrInvalidInterval, period)
	}
	if !slices.Contains(allowed, interval) {
		return fmt.Errorf("%w: interval %q not offered for period %q (allowed: %v)", types.ErrInvalidInterval, interval, period, allowed)
	}
	return nil
}

// IsIntraday reports whether bars at this interval carry a time of day
func IsIntraday(interval string) bool {
	return slices.Contains(intraday, interval)
}
