package ta

import "math"

func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

// Returns are simple day-over-day returns; a zero previous value is skipped.
func Returns(vals []float64) []float64 {
	if len(vals) < 2 {
		return nil
	}
	out := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		if vals[i-1] == 0 {
			continue
		}
		out = append(out, vals[i]/vals[i-1]-1)
	}
	return out
}
func ReturnVolatility(vals []float64) float64 {
	r := Returns(vals)
	return StdDev(r, len(r))
}
func RMSE(actual, predicted []float64) float64 {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return math.NaN()
	}
	s := 0.0
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

// MAPE is the mean absolute percentage error in percent. Zero actuals are
// left out.
func MAPE(actual, predicted []float64) float64 {
	n := min(len(actual), len(predicted))
	s, k := 0.0, 0
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		s += math.Abs((actual[i] - predicted[i]) / actual[i])
		k++
	}
	if k == 0 {
		return math.NaN()
	}
	return 100 * s / float64(k)
}
