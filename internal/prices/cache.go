package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/types"
)

// CachedSource keeps fetched histories in badger for a fixed TTL. Cache
// failures are logged and fall through to the wrapped source.
type CachedSource struct {
	source interfaces.PriceSource
	db     *badger.DB
	ttl    time.Duration
}

var _ interfaces.PriceSource = (*CachedSource)(nil)

// OpenCache opens (or creates) a badger store in dir. An empty dir keeps the
// cache in memory.
func OpenCache(source interfaces.PriceSource, dir string, ttl time.Duration) (*CachedSource, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open price cache: %w", err)
	}
	return &CachedSource{source: source, db: db, ttl: ttl}, nil
}

func (cs *CachedSource) Close() error {
	return cs.db.Close()
}

func cacheKey(ticker, period, interval string) []byte {
	return []byte("prices|" + ticker + "|" + period + "|" + interval)
}

// storedBar keeps the wire shape stable independent of types.Bar.
type storedBar struct {
	T int64   `json:"t"`
	Z int     `json:"z"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

func (cs *CachedSource) FetchHistory(ctx context.Context, ticker, period, interval string) ([]types.Bar, error) {
	key := cacheKey(ticker, period, interval)

	bars, err := cs.get(key)
	switch {
	case err == nil:
		logger.Debug(ctx, "Price cache hit", "ticker", ticker, "period", period, "interval", interval)
		return bars, nil
	case !errors.Is(err, badger.ErrKeyNotFound):
		logger.Warn(ctx, "Price cache read failed", "ticker", ticker, "error", err)
	}

	bars, err = cs.source.FetchHistory(ctx, ticker, period, interval)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		if err := cs.set(key, bars); err != nil {
			logger.Warn(ctx, "Price cache write failed", "ticker", ticker, "error", err)
		}
	}
	return bars, nil
}

func (cs *CachedSource) get(key []byte) ([]types.Bar, error) {
	var stored []storedBar
	err := cs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if err != nil {
		return nil, err
	}

	bars := make([]types.Bar, len(stored))
	for i, s := range stored {
		bars[i] = types.Bar{Date: time.Unix(s.T, 0).In(time.FixedZone("", s.Z)), Open: s.O, High: s.H, Low: s.L, Close: s.C, Volume: s.V}
	}
	return bars, nil
}

func (cs *CachedSource) set(key []byte, bars []types.Bar) error {
	stored := make([]storedBar, len(bars))
	for i, b := range bars {
		_, offset := b.Date.Zone()
		stored[i] = storedBar{T: b.Date.Unix(), Z: offset, O: b.Open, H: b.High, L: b.Low, C: b.Close, V: b.Volume}
	}
	val, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return cs.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, val)
		if cs.ttl > 0 {
			e = e.WithTTL(cs.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Invalidate drops the cached history for one request shape.
func (cs *CachedSource) Invalidate(ticker, period, interval string) error {
	return cs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cacheKey(ticker, period, interval))
	})
}
