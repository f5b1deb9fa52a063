package prices

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-forecaster/internal/types"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	bars  []types.Bar
	err   error
}

func (c *countingSource) FetchHistory(context.Context, string, string, string) ([]types.Bar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.bars, c.err
}

func TestCachedSourceServesRepeatsFromCache(t *testing.T) {
	ist := time.FixedZone("IST", 19800)
	src := &countingSource{bars: []types.Bar{
		{Date: time.Date(2024, 1, 2, 9, 15, 0, 0, ist), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Date: time.Date(2024, 1, 3, 9, 15, 0, 0, ist), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 200},
	}}

	cs, err := OpenCache(src, "", time.Hour)
	require.NoError(t, err)
	defer cs.Close()

	first, err := cs.FetchHistory(context.Background(), "TCS.NS", "1y", "1d")
	require.NoError(t, err)
	second, err := cs.FetchHistory(context.Background(), "TCS.NS", "1y", "1d")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	require.Len(t, second, 2)
	assert.True(t, first[0].Date.Equal(second[0].Date))
	_, offset := second[0].Date.Zone()
	assert.Equal(t, 19800, offset)
	assert.Equal(t, "2024-01-02", second[0].Date.Format("2006-01-02"))
	assert.Equal(t, 200.0, second[1].Volume)

	_, err = cs.FetchHistory(context.Background(), "TCS.NS", "2y", "1d")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "a different period is a different key")

	require.NoError(t, cs.Invalidate("TCS.NS", "1y", "1d"))
	_, err = cs.FetchHistory(context.Background(), "TCS.NS", "1y", "1d")
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	src := &countingSource{err: errors.Join(types.ErrPriceFetch, errors.New("boom"))}
	cs, err := OpenCache(src, "", time.Hour)
	require.NoError(t, err)
	defer cs.Close()

	for i := 0; i < 2; i++ {
		_, err := cs.FetchHistory(context.Background(), "TCS.NS", "1y", "1d")
		assert.ErrorIs(t, err, types.ErrPriceFetch)
	}
	assert.Equal(t, 2, src.calls)

	src.err = nil
	for i := 0; i < 2; i++ {
		bars, err := cs.FetchHistory(context.Background(), "TCS.NS", "1y", "1d")
		require.NoError(t, err)
		assert.Empty(t, bars)
	}
	assert.Equal(t, 4, src.calls, "empty histories are not cached")
}

func TestCachedSourceOnDisk(t *testing.T) {
	dir := t.TempDir()
	src := &countingSource{bars: []types.Bar{{Date: time.Unix(1704167100, 0).UTC(), Close: 10}}}

	cs, err := OpenCache(src, dir, time.Hour)
	require.NoError(t, err)
	_, err = cs.FetchHistory(context.Background(), "INFY.NS", "1y", "1d")
	require.NoError(t, err)
	require.NoError(t, cs.Close())

	reopened, err := OpenCache(src, dir, time.Hour)
	require.NoError(t, err)
	defer reopened.Close()
	bars, err := reopened.FetchHistory(context.Background(), "INFY.NS", "1y", "1d")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 1, src.calls)
}
