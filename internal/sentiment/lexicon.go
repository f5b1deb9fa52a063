package sentiment

import (
	"context"
	"strings"
	"unicode"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/types"
)

// LexiconClassifier scores text with word lists tuned for market news. It
// answers with a raw number, or Unrecognized when no listed word occurs.
type LexiconClassifier struct {
	positiveWords    map[string]bool
	negativeWords    map[string]bool
	uncertaintyWords map[string]bool
}

var _ interfaces.Classifier = (*LexiconClassifier)(nil)

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		positiveWords:    wordSet(lexiconPositive),
		negativeWords:    wordSet(lexiconNegative),
		uncertaintyWords: wordSet(lexiconUncertainty),
	}
}

func (lc *LexiconClassifier) Classify(_ context.Context, text string) (types.RawSentiment, error) {
	words := tokenize(strings.ToLower(text))

	pos, neg, unc := 0, 0, 0
	for _, w := range words {
		switch {
		case lc.positiveWords[w]:
			pos++
		case lc.negativeWords[w]:
			neg++
		}
		if lc.uncertaintyWords[w] {
			unc++
		}
	}
	if pos+neg == 0 {
		return types.RawSentiment{Kind: types.Unrecognized}, nil
	}

	// Net polarity of the sentiment-bearing words, damped by hedging language
	net := float64(pos-neg) / float64(pos+neg)
	uncertainty := min(float64(unc)/float64(len(words))*20, 1.0)
	net *= 1.0 - uncertainty*0.5

	return types.RawSentiment{Kind: types.RawNumber, Number: net}, nil
}

func tokenize(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func wordSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var lexiconPositive = []string{
	"beat", "beats", "bullish", "buy", "climb", "climbs", "exceed", "exceeds", "gain",
	"gains", "growth", "grew", "high", "higher", "improve", "improved", "jump", "jumps",
	"outperform", "outperforms", "profit", "profits", "rally", "rallies", "record",
	"rebound", "rise", "rises", "robust", "soar", "soars", "strong", "stronger",
	"surge", "surges", "upgrade", "upgraded", "upbeat", "win", "wins",
}

var lexiconNegative = []string{
	"bearish", "crash", "crashes", "cut", "cuts", "decline", "declines", "downgrade",
	"downgraded", "drop", "drops", "fall", "falls", "fraud", "loss", "losses", "low",
	"lower", "miss", "misses", "penalty", "plunge", "plunges", "probe", "sell", "selloff",
	"sink", "sinks", "slump", "slumps", "tumble", "tumbles", "underperform", "weak",
	"weaker", "warning",
}

var lexiconUncertainty = []string{
	"could", "may", "might", "possibly", "perhaps", "uncertain", "uncertainty", "unclear",
	"volatile", "volatility", "likely", "unlikely", "expect", "expects", "estimate",
}
