package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sentiment-forecaster/internal/api"
	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/types"
)

// RemoteClassifier posts text to a sentiment model served over HTTP, e.g.
// `{"text": "..."}` -> `{"predicted_sentiment": "1"}`.
type RemoteClassifier struct {
	client   *api.Client
	endpoint string
	retry    *api.RetryConfig
}

var _ interfaces.Classifier = (*RemoteClassifier)(nil)

func NewRemoteClassifier(endpoint string, timeout time.Duration) *RemoteClassifier {
	return &RemoteClassifier{
		client:   api.NewClient(api.WithTimeout(timeout), api.WithLogging(true)),
		endpoint: endpoint,
		retry:    &api.RetryConfig{MaxAttempts: 2, InitialWait: 250 * time.Millisecond, MaxWait: time.Second},
	}
}

func (rc *RemoteClassifier) Classify(ctx context.Context, text string) (types.RawSentiment, error) {
	req := api.NewRequest(http.MethodPost, rc.endpoint).
		WithContext(ctx).
		WithBody(map[string]string{"text": text})

	resp, err := rc.client.DoWithRetry(req, rc.retry)
	if err != nil {
		return types.RawSentiment{}, fmt.Errorf("%w: %v", types.ErrClassifier, err)
	}
	return FromJSON(resp.Body), nil
}
