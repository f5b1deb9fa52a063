package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/types"
)

const defaultClaudeSystem = `You classify the sentiment of financial news about a listed company.
Reply with one compact JSON object and nothing else:
{"label": "positive" | "negative" | "neutral", "score": <number between -1 and 1>}`

// ClaudeClassifier asks an Anthropic model for a structured label/score.
type ClaudeClassifier struct {
	messages  anthropic.MessageService
	model     string
	maxTokens int64
	system    string
}

var _ interfaces.Classifier = (*ClaudeClassifier)(nil)

// NewClaudeClassifier builds a classifier from an API key. Extra request
// options (base URL, HTTP client) are passed through to the SDK.
func NewClaudeClassifier(apiKey, model string, maxTokens int, system string, opts ...option.RequestOption) (*ClaudeClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY missing")
	}
	if system == "" {
		system = defaultClaudeSystem
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &ClaudeClassifier{
		messages:  client.Messages,
		model:     model,
		maxTokens: int64(maxTokens),
		system:    system,
	}, nil
}

func (cc *ClaudeClassifier) Classify(ctx context.Context, text string) (types.RawSentiment, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(cc.model),
		MaxTokens: cc.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
		System:      []anthropic.TextBlockParam{{Text: cc.system}},
		Temperature: anthropic.Float(0),
	}

	resp, err := cc.messages.New(ctx, params)
	if err != nil {
		return types.RawSentiment{}, fmt.Errorf("%w: claude: %v", types.ErrClassifier, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return types.RawSentiment{}, fmt.Errorf("%w: claude returned no text", types.ErrClassifier)
	}
	return parseModelReply(out.String()), nil
}

// parseModelReply reads the first JSON object in a model reply, falling back
// to treating the reply as a text label.
func parseModelReply(reply string) types.RawSentiment {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start >= 0 && end > start {
		raw := FromJSON([]byte(reply[start : end+1]))
		if raw.Kind != types.Unrecognized {
			return raw
		}
	}
	return fromString(reply)
}
