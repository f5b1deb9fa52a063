package forecastlog

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
)

type auditLine struct {
	Event         string  `json:"event"`
	Ticker        string  `json:"ticker"`
	LastPrice     float64 `json:"last_price"`
	FinalForecast float64 `json:"final_forecast"`
	Sentiment     float64 `json:"sentiment"`
}

// SummaryRow is one ticker's line in the daily summary CSV.
type SummaryRow struct {
	Ticker        string  `csv:"ticker"`
	Runs          int     `csv:"runs"`
	Failures      int     `csv:"failures"`
	LastPrice     float64 `csv:"last_price"`
	FinalForecast float64 `csv:"final_forecast"`
	ChangePct     float64 `csv:"change_pct"`
	AvgSentiment  float64 `csv:"avg_sentiment"`
}

func (w *Writer) summaryFilepath(t time.Time) string {
	return filepath.Join(w.dir, "summary", t.In(ist).Format("2006-01-02")+".csv")
}

// SummarizeDay aggregates the audit file for t's IST day into a CSV per
// ticker and returns its path. It returns "" when there is nothing to
// summarize.
func (w *Writer) SummarizeDay(t time.Time) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Open(w.dailyFilepath(t))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	aggs := map[string]*SummaryRow{}
	sentimentSum := map[string]float64{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var l auditLine
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil || l.Ticker == "" {
			continue
		}
		row := aggs[l.Ticker]
		if row == nil {
			row = &SummaryRow{Ticker: l.Ticker}
			aggs[l.Ticker] = row
		}
		row.Runs++
		if l.Event != "forecast" {
			row.Failures++
			continue
		}
		row.LastPrice = l.LastPrice
		row.FinalForecast = l.FinalForecast
		sentimentSum[l.Ticker] += l.Sentiment
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	rows := make([]*SummaryRow, 0, len(aggs))
	for _, r := range aggs {
		if ok := r.Runs - r.Failures; ok > 0 {
			r.AvgSentiment = round4(sentimentSum[r.Ticker] / float64(ok))
		}
		if r.LastPrice > 0 {
			r.ChangePct = round4(100 * (r.FinalForecast/r.LastPrice - 1))
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ticker < rows[j].Ticker })

	outPath := w.summaryFilepath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return "", err
	}
	return outPath, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// SummarizeToday summarizes the current IST day.
func (w *Writer) SummarizeToday() (string, error) {
	return w.SummarizeDay(w.now())
}
