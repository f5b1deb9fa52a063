package types

import "errors"

var (
	// ErrInsufficientHistory is returned when there are too few price points to fit.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrModelFit is returned when the numerical fit fails.
	ErrModelFit = errors.New("model fit failed")
	// ErrNewsFetch wraps news source failures. It never reaches a forecast caller.
	ErrNewsFetch = errors.New("news fetch failed")
	// ErrClassifier wraps a failed classification of a single text.
	ErrClassifier = errors.New("classifier failed")
	// ErrInvalidInstrument is returned for symbols outside the known universe.
	ErrInvalidInstrument = errors.New("invalid instrument")
	// ErrInvalidInterval is returned for a period/interval combination that is not offered.
	ErrInvalidInterval = errors.New("invalid period or interval")
	// ErrPriceFetch wraps price source failures.
	ErrPriceFetch = errors.New("price history fetch failed")
	// ErrQuoteFetch wraps key statistics source failures.
	ErrQuoteFetch = errors.New("key statistics fetch failed")
)
