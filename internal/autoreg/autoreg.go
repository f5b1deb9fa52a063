// Package autoreg fits AR(p) models with a constant by least squares and
// produces dynamic multi-step predictions.
package autoreg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"sentiment-forecaster/internal/types"
)

// Model is a fitted AR(p) model. Parameters are ordered
// [const, lag1, ..., lagp].
type Model struct {
	Lags   int
	NObs   int
	Params []float64
	// BSE are heteroscedasticity-robust (HC0) standard errors of Params
	BSE    []float64
	Sigma2 float64
	// Cond is the condition number of the design matrix
	Cond float64

	series []float64
}

// Fit estimates an AR(lags) model on y. It needs at least 2*lags+1
// observations so the design matrix has no fewer rows than columns.
func Fit(y []float64, lags int) (*Model, error) {
	if lags <= 0 {
		return nil, fmt.Errorf("%w: lag order must be positive, got %d", types.ErrModelFit, lags)
	}
	if len(y) < 2*lags+1 {
		return nil, fmt.Errorf("%w: %d observations for %d lags, need %d",
			types.ErrInsufficientHistory, len(y), lags, 2*lags+1)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value at index %d", types.ErrModelFit, i)
		}
	}

	nobs := len(y) - lags
	cols := lags + 1
	x := mat.NewDense(nobs, cols, nil)
	endog := mat.NewVecDense(nobs, nil)
	for i := 0; i < nobs; i++ {
		t := lags + i
		x.Set(i, 0, 1)
		for j := 1; j <= lags; j++ {
			x.Set(i, j, y[t-j])
		}
		endog.SetVec(i, y[t])
	}

	var qr mat.QR
	qr.Factorize(x)
	cond := qr.Cond()

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, endog); err != nil && !finiteCondition(err) {
		return nil, fmt.Errorf("%w: least squares: %v", types.ErrModelFit, err)
	}

	params := make([]float64, cols)
	for i := range params {
		params[i] = beta.AtVec(i)
		if math.IsNaN(params[i]) || math.IsInf(params[i], 0) {
			return nil, fmt.Errorf("%w: parameter %d is not finite", types.ErrModelFit, i)
		}
	}

	var fitted, resid mat.VecDense
	fitted.MulVec(x, &beta)
	resid.SubVec(endog, &fitted)
	sse := mat.Dot(&resid, &resid)

	bse, err := hc0(x, &resid)
	if err != nil {
		return nil, err
	}

	return &Model{
		Lags:   lags,
		NObs:   nobs,
		Params: params,
		BSE:    bse,
		Sigma2: sse / float64(nobs),
		Cond:   cond,
		series: append([]float64(nil), y...),
	}, nil
}

// hc0 computes White's covariance (X'X)^-1 X' diag(e^2) X (X'X)^-1 and
// returns the square roots of its diagonal.
func hc0(x *mat.Dense, resid *mat.VecDense) ([]float64, error) {
	rows, cols := x.Dims()

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var bread mat.Dense
	if err := bread.Inverse(&xtx); err != nil && !finiteCondition(err) {
		return nil, fmt.Errorf("%w: covariance: %v", types.ErrModelFit, err)
	}

	scaled := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		e := resid.AtVec(i)
		for j := 0; j < cols; j++ {
			scaled.Set(i, j, x.At(i, j)*e)
		}
	}
	var meat mat.Dense
	meat.Mul(scaled.T(), scaled)

	var cov mat.Dense
	cov.Product(&bread, &meat, &bread)

	bse := make([]float64, cols)
	for i := range bse {
		bse[i] = math.Sqrt(math.Max(cov.At(i, i), 0))
	}
	return bse, nil
}

// finiteCondition reports whether err only warns about an ill-conditioned
// but still solvable system.
func finiteCondition(err error) bool {
	var c mat.Condition
	return errors.As(err, &c) && !math.IsInf(float64(c), 0)
}

// Predict returns dynamic predictions for indices start..end of the fitted
// series. Values before start are the observed data; from start on each
// step feeds on earlier predictions. end may run past the sample.
func (m *Model) Predict(start, end int) ([]float64, error) {
	if start < m.Lags || start > len(m.series) {
		return nil, fmt.Errorf("%w: start %d outside [%d, %d]", types.ErrModelFit, start, m.Lags, len(m.series))
	}
	if end < start {
		return nil, fmt.Errorf("%w: end %d before start %d", types.ErrModelFit, end, start)
	}

	h := make([]float64, end+1)
	copy(h, m.series[:start])
	for t := start; t <= end; t++ {
		v := m.Params[0]
		for j := 1; j <= m.Lags; j++ {
			v += m.Params[j] * h[t-j]
		}
		h[t] = v
	}
	return h[start:], nil
}

// Fitted returns one-step in-sample predictions for indices Lags..len-1.
func (m *Model) Fitted() []float64 {
	out := make([]float64, 0, len(m.series)-m.Lags)
	for t := m.Lags; t < len(m.series); t++ {
		v := m.Params[0]
		for j := 1; j <= m.Lags; j++ {
			v += m.Params[j] * m.series[t-j]
		}
		out = append(out, v)
	}
	return out
}
