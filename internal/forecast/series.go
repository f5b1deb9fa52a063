package forecast

import (
	"math"
	"sort"
	"time"

	"sentiment-forecaster/internal/types"
)

const day = 24 * time.Hour

// CalendarDay drops the time of day, keeping the date as seen in t's own
// location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyCloses resamples bars to one close per calendar day. The last bar of a
// day wins, days without bars repeat the previous close, and bars with a
// non-finite or non-positive close are ignored.
func DailyCloses(bars []types.Bar) []types.PricePoint {
	byDay := make(map[time.Time]float64, len(bars))
	latest := make(map[time.Time]time.Time, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			continue
		}
		d := CalendarDay(b.Date)
		if seen, ok := latest[d]; ok && b.Date.Before(seen) {
			continue
		}
		latest[d] = b.Date
		byDay[d] = b.Close
	}
	if len(byDay) == 0 {
		return nil
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	first, last := days[0], days[len(days)-1]
	out := make([]types.PricePoint, 0, int(last.Sub(first)/day)+1)
	prev := byDay[first]
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if v, ok := byDay[d]; ok {
			prev = v
		}
		out = append(out, types.PricePoint{Date: d, Value: prev})
	}
	return out
}

// SplitIndex is where the test partition starts: floor(0.9n).
func SplitIndex(n int) int {
	return n * 9 / 10
}

// Split partitions history into train and test. The point at SplitIndex ends
// train and starts test.
func Split(history []types.PricePoint) (train, test []types.PricePoint) {
	if len(history) == 0 {
		return nil, nil
	}
	s := SplitIndex(len(history))
	return history[:s+1], history[s:]
}

func values(points []types.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
