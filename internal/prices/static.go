package prices

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/types"
)

const maxStaticBars = 20000

var intervalSteps = map[string]time.Duration{
	"1m":  time.Minute,
	"2m":  2 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"60m": time.Hour,
	"90m": 90 * time.Minute,
	"1d":  24 * time.Hour,
	"5d":  5 * 24 * time.Hour,
	"1wk": 7 * 24 * time.Hour,
	"1mo": 30 * 24 * time.Hour,
}

// StaticSource generates a reproducible random walk per ticker. It serves
// offline runs and demos.
type StaticSource struct {
	now func() time.Time
}

var _ interfaces.PriceSource = (*StaticSource)(nil)

func NewStaticSource() *StaticSource {
	return &StaticSource{now: time.Now}
}

func (s *StaticSource) FetchHistory(ctx context.Context, ticker, period, interval string) ([]types.Bar, error) {
	step, ok := intervalSteps[interval]
	if !ok {
		return nil, fmt.Errorf("%w: unknown interval %q", types.ErrInvalidInterval, interval)
	}
	end := s.now().UTC().Truncate(step)
	if step >= 24*time.Hour {
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	}
	start, err := periodStart(end, period)
	if err != nil {
		return nil, err
	}

	n := int(end.Sub(start)/step) + 1
	if n > maxStaticBars {
		n = maxStaticBars
	}

	h := fnv.New64a()
	h.Write([]byte(ticker))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	base := 1000.0
	cs := make([]types.Bar, 0, n)
	for i := n - 1; i >= 0; i-- {
		c := base + (r.Float64()-0.5)*base*0.02
		hi := c + r.Float64()*base*0.005
		lo := c - r.Float64()*base*0.005
		cs = append(cs, types.Bar{
			Date:   end.Add(-time.Duration(i) * step),
			Open:   base,
			High:   max(hi, base, c),
			Low:    min(lo, base, c),
			Close:  c,
			Volume: float64(r.Intn(100000)),
		})
		base = c
	}
	return cs, nil
}
