package fetcher

import (
	"context"
	"net/http"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// HTTPFetcher probes and streams media over HTTP
type HTTPFetcher struct {
	client *http.Client
}

// New creates a fetcher using client, or http.DefaultClient when nil
func New(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return oops.With("url", url).Wrap(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return oops.With("url", url, "context", "probe failed").Wrap(err)
	}
	resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return oops.With("url", url, "status", resp.StatusCode).Wrap(errors.ErrMediaUnavailable)
	}
	return nil
}

// Open starts downloading url. The caller owns the returned body.
func (f *HTTPFetcher) Open(ctx context.Context, url string) (*domain.RemoteFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, oops.With("url", url).Wrap(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, oops.With("url", url, "context", "download failed").Wrap(err)
	}

	if !isSuccess(resp.StatusCode) {
		resp.Body.Close()
		return nil, oops.With("url", url, "status", resp.StatusCode).Wrap(errors.ErrMediaUnavailable)
	}

	return &domain.RemoteFile{Size: resp.ContentLength, Body: resp.Body}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
