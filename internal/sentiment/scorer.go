package sentiment

import (
	"math"
	"strings"

	"sentiment-forecaster/internal/types"
)

const (
	// labelThreshold separates positive/negative from neutral numeric scores
	labelThreshold = 0.1
	labelScore     = 0.5
	keywordScore   = 0.4
)

var positiveKeywords = []string{
	"surge", "rise", "gain", "profit", "growth", "strong", "up", "bullish", "positive",
	"beat", "outperform", "increase", "higher", "success", "exceed", "soar", "jump", "rally",
}

var negativeKeywords = []string{
	"fall", "drop", "decline", "loss", "weak", "down", "bearish", "negative", "miss",
	"underperform", "crash", "decrease", "lower", "fail", "plunge", "sink", "tumble",
}

// Score turns a classifier answer into a score in [-1, 1] and a label.
// text is the classified text, used when the answer shape is not recognised.
// Score never fails.
func Score(raw types.RawSentiment, text string) (float64, types.SentimentLabel) {
	switch raw.Kind {
	case types.NumericCode:
		if c, ok := numericCodes[strings.TrimSpace(raw.Code)]; ok {
			return c.score, c.label
		}
	case types.Structured:
		score := 0.0
		if raw.HasScore && !math.IsNaN(raw.Score) {
			score = Clamp(raw.Score)
		}
		return score, structuredLabel(raw.Label, score)
	case types.TextLabel:
		return fromTextLabel(raw.Label)
	case types.RawNumber:
		if !math.IsNaN(raw.Number) {
			score := Clamp(raw.Number)
			return score, LabelFor(score)
		}
	}
	return Keywords(text)
}

// Keywords scores text by counting which positive and negative keywords it
// contains. Matching is a case-insensitive substring test and each keyword
// counts once.
func Keywords(text string) (float64, types.SentimentLabel) {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveKeywords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeKeywords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return keywordScore, types.Positive
	case neg > pos:
		return -keywordScore, types.Negative
	default:
		return 0, types.Neutral
	}
}

// Clamp bounds a score to [-1, 1]
func Clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// LabelFor maps a numeric score to its label
func LabelFor(score float64) types.SentimentLabel {
	switch {
	case score > labelThreshold:
		return types.Positive
	case score < -labelThreshold:
		return types.Negative
	default:
		return types.Neutral
	}
}

func fromTextLabel(label string) (float64, types.SentimentLabel) {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "positive") || strings.Contains(l, "bullish"):
		return labelScore, types.Positive
	case strings.Contains(l, "negative") || strings.Contains(l, "bearish"):
		return -labelScore, types.Negative
	default:
		return 0, types.Neutral
	}
}

// structuredLabel keeps an explicit label when it names a known class and
// otherwise derives one from the score.
func structuredLabel(label string, score float64) types.SentimentLabel {
	l := strings.ToLower(strings.TrimSpace(label))
	switch types.SentimentLabel(l) {
	case types.Positive, types.Negative, types.Neutral:
		return types.SentimentLabel(l)
	}
	switch {
	case strings.Contains(l, "positive") || strings.Contains(l, "bullish"):
		return types.Positive
	case strings.Contains(l, "negative") || strings.Contains(l, "bearish"):
		return types.Negative
	}
	return LabelFor(score)
}
