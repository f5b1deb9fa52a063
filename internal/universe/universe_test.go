package universe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-forecaster/internal/types"
)

func TestDefaultUniverse(t *testing.T) {
	u := Default()
	if u.Len() != 20 {
		t.Errorf("Expected 20 default instruments, got %d", u.Len())
	}

	in, err := u.Lookup("reliance")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", in.Symbol)
	assert.Equal(t, "Reliance Industries Ltd", in.Name)

	_, err = u.Lookup("XYZ")
	assert.True(t, errors.Is(err, types.ErrInvalidInstrument))
}

func TestTickerSuffix(t *testing.T) {
	assert.Equal(t, "TCS.NS", Ticker("TCS", "NSE"))
	assert.Equal(t, "TCS.BO", Ticker("tcs", "bse"))
	assert.Equal(t, "TCS.NS", Ticker("TCS", ""))
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "equities.csv")
	body := "Symbol,Company Name\nTATAMOTORS,Tata Motors Ltd\n ongc ,Oil & Natural Gas Corp\n,\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	u, err := LoadCSV(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"ONGC", "TATAMOTORS"}, u.Symbols())

	in, err := u.Lookup("ONGC")
	require.NoError(t, err)
	assert.Equal(t, "Oil & Natural Gas Corp", in.Name)
}

func TestLoadCSVIssuerList(t *testing.T) {
	p := filepath.Join(t.TempDir(), "equity_issuers.csv")
	body := "Security Code,Issuer Name,Security Id,Status\n500325,Reliance Industries Ltd,RELIANCE,Active\n532540,Tata Consultancy Services Ltd,TCS,Active\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	u, err := LoadCSV(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"500325", "532540"}, u.Symbols())

	in, err := u.Lookup("532540")
	require.NoError(t, err)
	assert.Equal(t, "Tata Consultancy Services Ltd", in.Name)
}

func TestLoadCSVWithoutKnownColumns(t *testing.T) {
	p := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(p, []byte("Ticker,Name\nTCS,Tata\n"), 0o644))

	_, err := LoadCSV(context.Background(), p)
	assert.Error(t, err)
}

func TestLoadCSVMissingFallsBack(t *testing.T) {
	u, err := LoadCSV(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Equal(t, 20, u.Len())
}

func TestValidateInterval(t *testing.T) {
	assert.NoError(t, ValidateInterval("2y", "1d"))
	assert.NoError(t, ValidateInterval("1d", "5m"))
	assert.NoError(t, ValidateInterval("1mo", "1d"))

	err := ValidateInterval("1d", "1d")
	assert.True(t, errors.Is(err, types.ErrInvalidInterval))
	err = ValidateInterval("3y", "1d")
	assert.True(t, errors.Is(err, types.ErrInvalidInterval))

	assert.True(t, IsIntraday("15m"))
	assert.False(t, IsIntraday("1wk"))
}

func TestPeriodsIsACopy(t *testing.T) {
	p := Periods()
	p["1y"][0] = "bogus"
	assert.NoError(t, ValidateInterval("1y", "1d"))
	assert.Len(t, Periods(), len(PeriodOrder))
}
