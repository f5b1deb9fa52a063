package interfaces

import (
	"context"
	"encoding/json"
)

// NewsSource returns recent news records for a ticker, newest first. Records
// are kept raw because sources disagree on their shape.
type NewsSource interface {
	FetchRecentNews(ctx context.Context, ticker string) ([]json.RawMessage, error)
}
