package autoreg

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-forecaster/internal/types"
)

// cosine returns 50 + 5cos(0.3t), which is exactly an AR(2) process
func cosine(n int) []float64 {
	y := make([]float64, n)
	for t := range y {
		y[t] = 50 + 5*math.Cos(0.3*float64(t))
	}
	return y
}

// noisy adds a deterministic pseudo-random disturbance to cosine
func noisy(n int) []float64 {
	y := cosine(n)
	state := uint32(7)
	for t := range y {
		state = state*1664525 + 1013904223
		y[t] += (float64(state>>8)/float64(1<<24) - 0.5) * 0.4
	}
	return y
}

func TestFitRecoversExactProcess(t *testing.T) {
	m, err := Fit(cosine(200), 2)
	require.NoError(t, err)

	a1 := 2 * math.Cos(0.3)
	assert.InDelta(t, 50*(2-a1), m.Params[0], 1e-6)
	assert.InDelta(t, a1, m.Params[1], 1e-8)
	assert.InDelta(t, -1.0, m.Params[2], 1e-8)
	assert.InDelta(t, 0.0, m.Sigma2, 1e-12)
	assert.Equal(t, 198, m.NObs)
	assert.Equal(t, 2, m.Lags)
}

func TestPredictDynamicContinuesProcess(t *testing.T) {
	full := cosine(300)
	m, err := Fit(full[:200], 2)
	require.NoError(t, err)

	pred, err := m.Predict(150, 299)
	require.NoError(t, err)
	require.Len(t, pred, 150)
	for i, v := range pred {
		if math.Abs(v-full[150+i]) > 1e-4 {
			t.Fatalf("Expected %f at index %d, got %f", full[150+i], 150+i, v)
		}
	}
}

func TestPredictUsesPredictionsNotObservations(t *testing.T) {
	y := noisy(120)
	m, err := Fit(y, 3)
	require.NoError(t, err)

	pred, err := m.Predict(100, 102)
	require.NoError(t, err)

	first := m.Params[0] + m.Params[1]*y[99] + m.Params[2]*y[98] + m.Params[3]*y[97]
	second := m.Params[0] + m.Params[1]*first + m.Params[2]*y[99] + m.Params[3]*y[98]
	assert.InDelta(t, first, pred[0], 1e-9)
	assert.InDelta(t, second, pred[1], 1e-9)
}

func TestFitRobustStandardErrors(t *testing.T) {
	m, err := Fit(noisy(400), 2)
	require.NoError(t, err)
	require.Len(t, m.BSE, 3)
	for i, se := range m.BSE {
		if !(se > 0) || math.IsInf(se, 0) {
			t.Errorf("Expected positive finite standard error %d, got %f", i, se)
		}
	}
	assert.Greater(t, m.Sigma2, 0.0)
	assert.Len(t, m.Fitted(), 398)
}

func TestFitDeterministic(t *testing.T) {
	y := noisy(300)
	a, err := Fit(y, 5)
	require.NoError(t, err)
	b, err := Fit(y, 5)
	require.NoError(t, err)
	assert.Equal(t, a.Params, b.Params)
	assert.Equal(t, a.BSE, b.BSE)

	pa, _ := a.Predict(250, 320)
	pb, _ := b.Predict(250, 320)
	assert.Equal(t, pa, pb)
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(cosine(4), 2)
	if !errors.Is(err, types.ErrInsufficientHistory) {
		t.Errorf("Expected ErrInsufficientHistory, got %v", err)
	}

	_, err = Fit(cosine(10), 0)
	assert.ErrorIs(t, err, types.ErrModelFit)

	y := cosine(50)
	y[20] = math.NaN()
	_, err = Fit(y, 2)
	assert.ErrorIs(t, err, types.ErrModelFit)
}

func TestPredictRange(t *testing.T) {
	m, err := Fit(cosine(50), 2)
	require.NoError(t, err)

	_, err = m.Predict(1, 10)
	assert.ErrorIs(t, err, types.ErrModelFit)
	_, err = m.Predict(51, 60)
	assert.ErrorIs(t, err, types.ErrModelFit)
	_, err = m.Predict(20, 10)
	assert.ErrorIs(t, err, types.ErrModelFit)

	out, err := m.Predict(50, 50)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
