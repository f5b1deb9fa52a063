package forecastlog

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ist = time.FixedZone("IST", 19800)

// Entry is one audited forecast.
type Entry struct {
	RequestID     string
	Ticker        string
	Period        string
	Interval      string
	LastPrice     float64
	FinalForecast float64
	Sentiment     float64
	Label         string
	ArticleCount  int
	Lags          int
	HorizonDays   int
	TestRMSE      float64
	Err           error
}

// Writer appends forecast entries as JSON lines, one file per IST day.
type Writer struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// LogDir is FORECAST_LOG_DIR, or "logs".
func LogDir() string {
	if v := os.Getenv("FORECAST_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// New writes under dir, or LogDir() when dir is empty.
func New(dir string) *Writer {
	if dir == "" {
		dir = LogDir()
	}
	return &Writer{dir: dir, now: time.Now}
}

func (w *Writer) dailyFilepath(t time.Time) string {
	return filepath.Join(w.dir, t.In(ist).Format("2006-01-02")+".jsonl")
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "event",
		LevelKey:       zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func (w *Writer) Append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().In(ist)
	p := w.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(f), zapcore.InfoLevel)
	l := zap.New(core, zap.WithClock(fixedClock(now)))

	fields := []zap.Field{
		zap.String("request_id", e.RequestID),
		zap.String("ticker", e.Ticker),
		zap.String("period", e.Period),
		zap.String("interval", e.Interval),
	}
	event := "forecast"
	if e.Err != nil {
		event = "forecast_failed"
		fields = append(fields, zap.String("error", e.Err.Error()))
	} else {
		fields = append(fields,
			zap.Float64("last_price", e.LastPrice),
			zap.Float64("final_forecast", e.FinalForecast),
			zap.Float64("sentiment", e.Sentiment),
			zap.String("label", e.Label),
			zap.Int("articles", e.ArticleCount),
			zap.Int("lags", e.Lags),
			zap.Int("horizon_days", e.HorizonDays),
			zap.Float64("test_rmse", e.TestRMSE),
		)
	}
	l.Info(event, fields...)
	return l.Sync()
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func (c fixedClock) NewTicker(d time.Duration) *time.Ticker { return time.NewTicker(d) }

// CompressOlder gzips daily files last modified more than retentionDays ago.
func (w *Writer) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := w.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(w.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := d.Info()
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}
		return gzipFile(p, gz)
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return nil
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil
	}
	gw := gzip.NewWriter(out)
	_, copyErr := io.Copy(gw, in)
	_ = gw.Close()
	_ = out.Close()
	if copyErr != nil {
		_ = os.Remove(dst)
		return nil
	}
	_ = in.Close()
	return os.Remove(src)
}
