package sentiment

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"sentiment-forecaster/internal/types"
)

var numericCodes = map[string]struct {
	score float64
	label types.SentimentLabel
}{
	"1":    {0.5, types.Positive},
	"1.0":  {0.5, types.Positive},
	"3":    {-0.5, types.Negative},
	"3.0":  {-0.5, types.Negative},
	"-1":   {-0.5, types.Negative},
	"-1.0": {-0.5, types.Negative},
	"0":    {0, types.Neutral},
	"0.0":  {0, types.Neutral},
	"2":    {0, types.Neutral},
	"2.0":  {0, types.Neutral},
}

// payloadKeys are the fields remote classifiers put their answer under.
var payloadKeys = []string{"predicted_sentiment", "sentiment", "prediction", "result"}

// FromValue tags a decoded classifier answer. Numbers equal to a known code
// are tagged as codes, matching how the codes are printed by the classifier.
func FromValue(v any) types.RawSentiment {
	switch x := v.(type) {
	case nil:
		return types.RawSentiment{Kind: types.Unrecognized}
	case types.RawSentiment:
		return x
	case string:
		return fromString(x)
	case float64:
		return fromNumber(x)
	case float32:
		return fromNumber(float64(x))
	case int:
		return fromNumber(float64(x))
	case int32:
		return fromNumber(float64(x))
	case int64:
		return fromNumber(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return fromNumber(f)
		}
		return fromString(x.String())
	case []any:
		if len(x) == 1 {
			return FromValue(x[0])
		}
	case []string:
		if len(x) == 1 {
			return fromString(x[0])
		}
	case map[string]any:
		label, hasLabel := x["label"]
		score, hasScore := x["score"]
		if hasLabel || hasScore {
			raw := types.RawSentiment{Kind: types.Structured}
			if hasLabel && label != nil {
				raw.Label = fmt.Sprint(label)
			}
			if f, ok := toFloat(score); ok {
				raw.Score, raw.HasScore = f, true
			}
			return raw
		}
		for _, k := range payloadKeys {
			if inner, ok := x[k]; ok {
				return FromValue(inner)
			}
		}
	}
	return types.RawSentiment{Kind: types.Unrecognized}
}

// FromJSON tags a classifier response body. Non-JSON bodies are treated as a
// plain text answer.
func FromJSON(body []byte) types.RawSentiment {
	if !gjson.ValidBytes(body) {
		return fromString(string(body))
	}
	return fromResult(gjson.ParseBytes(body))
}

func fromResult(r gjson.Result) types.RawSentiment {
	switch r.Type {
	case gjson.Number:
		return fromNumber(r.Float())
	case gjson.String:
		return fromString(r.String())
	case gjson.JSON:
		if r.IsArray() {
			arr := r.Array()
			if len(arr) == 1 {
				return fromResult(arr[0])
			}
			return types.RawSentiment{Kind: types.Unrecognized}
		}
		label, score := r.Get("label"), r.Get("score")
		if label.Exists() || score.Exists() {
			raw := types.RawSentiment{Kind: types.Structured}
			if label.Exists() && label.Type != gjson.Null {
				raw.Label = label.String()
			}
			if score.Type == gjson.Number {
				raw.Score, raw.HasScore = score.Float(), true
			}
			return raw
		}
		for _, k := range payloadKeys {
			if inner := r.Get(k); inner.Exists() {
				return fromResult(inner)
			}
		}
	}
	return types.RawSentiment{Kind: types.Unrecognized}
}

func fromString(s string) types.RawSentiment {
	t := strings.TrimSpace(s)
	if t == "" {
		return types.RawSentiment{Kind: types.Unrecognized}
	}
	if _, ok := numericCodes[t]; ok {
		return types.RawSentiment{Kind: types.NumericCode, Code: t}
	}
	return types.RawSentiment{Kind: types.TextLabel, Label: t}
}

func fromNumber(f float64) types.RawSentiment {
	if math.IsNaN(f) {
		return types.RawSentiment{Kind: types.Unrecognized}
	}
	code := strconv.FormatFloat(f, 'f', -1, 64)
	if _, ok := numericCodes[code]; ok {
		return types.RawSentiment{Kind: types.NumericCode, Code: code}
	}
	return types.RawSentiment{Kind: types.RawNumber, Number: f}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}
