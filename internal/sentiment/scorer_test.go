package sentiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"sentiment-forecaster/internal/types"
)

func TestScoreResolutionOrder(t *testing.T) {
	tests := []struct {
		name      string
		raw       types.RawSentiment
		text      string
		wantScore float64
		wantLabel types.SentimentLabel
	}{
		{"code 1", FromValue("1"), "", 0.5, types.Positive},
		{"code 1.0", FromValue("1.0"), "", 0.5, types.Positive},
		{"code 3", FromValue("3"), "stock surges", -0.5, types.Negative},
		{"code -1.0", FromValue("-1.0"), "", -0.5, types.Negative},
		{"code 0", FromValue("0"), "", 0, types.Neutral},
		{"code 2.0", FromValue("2.0"), "", 0, types.Neutral},
		{"numeric code value", FromValue(3.0), "", -0.5, types.Negative},
		{"structured", FromValue(map[string]any{"label": "Positive", "score": 0.83}), "", 0.83, types.Positive},
		{"structured clamps", FromValue(map[string]any{"label": "NEGATIVE", "score": -7.0}), "", -1, types.Negative},
		{"structured no score", FromValue(map[string]any{"label": "neutral"}), "", 0, types.Neutral},
		{"structured odd label", FromValue(map[string]any{"label": "LABEL_X", "score": 0.4}), "", 0.4, types.Positive},
		{"text bullish", FromValue("Bullish"), "", 0.5, types.Positive},
		{"text bearish", FromValue("very bearish"), "", -0.5, types.Negative},
		{"text other", FromValue("mixed"), "shares surge", 0, types.Neutral},
		{"raw clamp high", FromValue(5.0), "", 1, types.Positive},
		{"raw clamp low", FromValue(-2.5), "", -1, types.Negative},
		{"raw inside band", FromValue(0.05), "", 0.05, types.Neutral},
		{"raw negative", FromValue(-0.3), "", -0.3, types.Negative},
		{"fallback positive", FromValue(nil), "Shares surge on record profit", 0.4, types.Positive},
		{"fallback negative", FromValue(nil), "Stock tumbles after earnings miss", -0.4, types.Negative},
		{"fallback tie", FromValue(nil), "Quarterly results announced", 0, types.Neutral},
		{"nan number", types.RawSentiment{Kind: types.RawNumber, Number: math.NaN()}, "profits soar", 0.4, types.Positive},
		{"unknown code", types.RawSentiment{Kind: types.NumericCode, Code: "7"}, "", 0, types.Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := Score(tt.raw, tt.text)
			assert.InDelta(t, tt.wantScore, score, 1e-12)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	inputs := []any{5.0, -5.0, math.Inf(1), math.Inf(-1), 0.99, "garbage", 42,
		map[string]any{"score": 12.5}, map[string]any{"score": math.Inf(-1)}, nil, []any{"1"}}
	for _, in := range inputs {
		score, _ := Score(FromValue(in), "up down up")
		if score < -1 || score > 1 {
			t.Errorf("Expected score in [-1,1] for %v, got %f", in, score)
		}
	}
}

func TestClassifierReturnsThree(t *testing.T) {
	score, label := Score(FromValue("3"), "")
	if score != -0.5 || label != types.Negative {
		t.Errorf("Expected (-0.5, negative), got (%v, %s)", score, label)
	}
}

func TestKeywordsCountDistinctSubstrings(t *testing.T) {
	// "up" appears inside "upgrade"; each keyword counts once however often it occurs
	score, label := Keywords("UPGRADE upgrade upgrade, but a drop and a loss")
	assert.Equal(t, -0.4, score)
	assert.Equal(t, types.Negative, label)
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, types.Neutral, LabelFor(0.1))
	assert.Equal(t, types.Positive, LabelFor(0.1000001))
	assert.Equal(t, types.Neutral, LabelFor(-0.1))
	assert.Equal(t, types.Negative, LabelFor(-0.11))
}
