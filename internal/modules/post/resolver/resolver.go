package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// Config configures the scraping API client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Client resolves tweet IDs through the scraping API
type Client struct {
	baseURL  string
	client   *http.Client
	executor failsafe.Executor[*http.Response]
	logger   *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// New creates a new scraping API client
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = 2 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: cfg.Timeout},
		executor: failsafe.With(newRetryPolicy(cfg)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

//nolint:bodyclose // *http.Response is a type parameter here, not a live response
func newRetryPolicy(cfg Config) retrypolicy.RetryPolicy[*http.Response] {
	return retrypolicy.NewBuilder[*http.Response]().
		HandleIf(shouldRetry).
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		Build()
}

// shouldRetry retries network errors, rate limits and server errors.
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil || resp == nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

// statusResponse is the wire shape of GET /Twitter/status/{id}.
type statusResponse struct {
	MediaExtended  *[]mediaResponse `json:"media_extended"`
	Text           *string          `json:"text"`
	UserName       *string          `json:"user_name"`
	UserScreenName *string          `json:"user_screen_name"`
	TweetURL       *string          `json:"tweetURL"`
	TweetID        *string          `json:"tweetID"`
}

type mediaResponse struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Resolve fetches a tweet's media and metadata.
// A non-2xx response or a body that does not match the expected shape is an error.
func (c *Client) Resolve(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	url := fmt.Sprintf("%s/Twitter/status/%s", c.baseURL, id)

	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if shouldRetry(resp, err) && resp != nil {
			c.logger.DebugContext(ctx, "Scraping API answered with retryable status", "post_id", id, "status", resp.StatusCode)
			_ = resp.Body.Close()
		}
		return resp, err
	})
	if err != nil && resp == nil {
		return nil, oops.With("post_id", id, "url", url, "context", "scraping request failed").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, oops.
			With("post_id", id, "status", resp.StatusCode).
			Wrapf(errors.ErrScrapeStatus, "status %d", resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, oops.With("post_id", id, "cause", err.Error()).Wrap(errors.ErrScrapeDecode)
	}
	if body.MediaExtended == nil {
		return nil, oops.With("post_id", id, "cause", "missing media_extended").Wrap(errors.ErrScrapeDecode)
	}

	return toPost(id, &body), nil
}

func toPost(id domain.PostID, body *statusResponse) *domain.Post {
	post := &domain.Post{
		ID: id,
		Metadata: domain.Metadata{
			PostID:       orDefault(body.TweetID, domain.None),
			Text:         orDefault(body.Text, domain.NoText),
			AuthorName:   orDefault(body.UserName, domain.None),
			AuthorHandle: orDefault(body.UserScreenName, domain.None),
			URL:          orDefault(body.TweetURL, domain.None),
		},
	}

	for _, media := range *body.MediaExtended {
		mediaType, ok := wireMediaType(media.Type)
		if !ok || media.URL == "" {
			post.Unsupported = append(post.Unsupported, media.Type)
			continue
		}
		post.Media = append(post.Media, domain.MediaItem{Type: mediaType, URL: media.URL})
	}

	return post
}

func wireMediaType(raw string) (domain.MediaType, bool) {
	switch raw {
	case "gif":
		return domain.MediaTypeAnimation, true
	case "image", "video":
		return domain.MediaType(raw), true
	default:
		return "", false
	}
}

func orDefault(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return *value
}
