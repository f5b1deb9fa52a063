package prices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-forecaster/internal/api"
	"sentiment-forecaster/internal/types"
)

const chartBody = `{"chart":{"result":[{
  "meta":{"symbol":"TCS.NS","gmtoffset":19800,"exchangeTimezoneName":"Asia/Kolkata"},
  "timestamp":[1704167100,1704253500,1704339900],
  "indicators":{"quote":[{
    "open":[3800.0,null,3850.5],
    "high":[3830.0,null,3880.0],
    "low":[3790.0,null,3840.0],
    "close":[3820.5,null,3870.25],
    "volume":[120000,null,98000]
  }]}
}],"error":null}}`

func TestYahooSourceFetchHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TCS.NS", r.URL.Path)
		assert.Equal(t, "2y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	src := NewYahooSource(api.NewClient(), server.URL)
	bars, err := src.FetchHistory(context.Background(), "TCS.NS", "2y", "1d")
	require.NoError(t, err)
	require.Len(t, bars, 2, "rows without a close are dropped")

	assert.Equal(t, 3820.5, bars[0].Close)
	assert.Equal(t, 3800.0, bars[0].Open)
	assert.Equal(t, 120000.0, bars[0].Volume)
	assert.Equal(t, "2024-01-02", bars[0].Date.Format("2006-01-02"))
	_, offset := bars[0].Date.Zone()
	assert.Equal(t, 19800, offset)
	assert.Equal(t, 3870.25, bars[1].Close)
}

func TestYahooSourceChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer server.Close()

	_, err := NewYahooSource(api.NewClient(), server.URL).FetchHistory(context.Background(), "NOPE.NS", "1y", "1d")
	if !errors.Is(err, types.ErrPriceFetch) {
		t.Errorf("Expected ErrPriceFetch, got %v", err)
	}
}

func TestYahooSourceRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	src := NewYahooSource(api.NewClient(), server.URL)
	src.retry = &api.RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	bars, err := src.FetchHistory(context.Background(), "TCS.NS", "1y", "1d")
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestParseChart(t *testing.T) {
	_, err := parseChart("X", []byte(`not json`))
	assert.ErrorIs(t, err, types.ErrPriceFetch)

	_, err = parseChart("X", []byte(`{"chart":{"result":[]}}`))
	assert.ErrorIs(t, err, types.ErrPriceFetch)

	_, err = parseChart("X", []byte(`{"chart":{"result":null,"error":{"description":"Invalid range"}}}`))
	assert.ErrorIs(t, err, types.ErrPriceFetch)

	bars, err := parseChart("X", []byte(`{"chart":{"result":[{"meta":{"gmtoffset":0},"timestamp":[1,2],"indicators":{"quote":[{"close":[5,6]}]}}]}}`))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 5.0, bars[0].Open, "missing open falls back to close")
	assert.Equal(t, 0.0, bars[1].Volume)
}
