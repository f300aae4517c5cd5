package sources

import (
	"context"
	"fmt"
	"net/http"
)

// queueFetcher replays canned responses in order, recording requested URLs.
type queueFetcher struct {
	responses []queuedResponse
	urls      []string
	buckets   []string
}

type queuedResponse struct {
	body []byte
	err  error
}

func (f *queueFetcher) Get(_ context.Context, bucket, rawURL string) ([]byte, http.Header, error) {
	f.urls = append(f.urls, rawURL)
	f.buckets = append(f.buckets, bucket)
	if len(f.responses) == 0 {
		return nil, nil, fmt.Errorf("unexpected request to %s", rawURL)
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	if next.err != nil {
		return nil, nil, next.err
	}
	return next.body, http.Header{}, nil
}
