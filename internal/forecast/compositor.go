package forecast

import (
	"math"
	"time"

	"sentiment-forecaster/internal/types"
)

const (
	decayHorizonDays = 90.0
	decayFloor       = 0.3
	maxDailyTilt     = 0.015
	firstDayBand     = 0.01
	laterDayBand     = 0.05
)

// TimeDecay is the share of sentiment applied daysAhead days after the last
// observation: linear from 1 down to a floor of 0.3 at day 63 and beyond.
func TimeDecay(daysAhead int) float64 {
	return math.Max(decayFloor, 1.0-float64(daysAhead)/decayHorizonDays)
}

// Adjust tilts the part of baseline strictly after testEnd by sentiment and
// bounds each day's move. The first future day stays within 1% of lastPrice;
// every later day stays within 5% of the previous adjusted value. Points up
// to testEnd are copied unchanged and baseline is not modified.
func Adjust(baseline []types.PricePoint, testEnd time.Time, lastPrice, sentiment float64) []types.PricePoint {
	if math.IsNaN(sentiment) {
		sentiment = 0
	}
	out := make([]types.PricePoint, len(baseline))

	var (
		prev    float64
		started bool
	)
	for i, p := range baseline {
		out[i] = p
		if !p.Date.After(testEnd) {
			continue
		}

		daysAhead := int(math.Round(p.Date.Sub(testEnd).Hours() / 24))
		raw := p.Value * (1 + sentiment*TimeDecay(daysAhead)*maxDailyTilt)

		if !started {
			raw = clampAround(raw, lastPrice, firstDayBand)
			started = true
		} else {
			raw = clampAround(raw, prev, laterDayBand)
		}
		out[i].Value = raw
		prev = raw
	}
	return out
}

func clampAround(v, anchor, band float64) float64 {
	hi := anchor + anchor*band
	lo := anchor - anchor*band
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}
