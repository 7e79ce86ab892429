package extractor

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

var (
	shortLinkRegex = regexp.MustCompile(`t\.co/[a-zA-Z0-9]+`)

	// Accepts twitter.com and x.com, "status", "statuses" and the "web" alias.
	postURLRegex = regexp.MustCompile(`(?:twitter|x)\.com/.{1,15}/(?:web|status(?:es)?)/([0-9]{1,20})`)
)

// Unshortener expands a shortened link to the URL it redirects to.
type Unshortener interface {
	Resolve(ctx context.Context, link string) (string, error)
}

// Extractor finds tweet IDs in free text
type Extractor struct {
	unshortener Unshortener
	logger      *slog.Logger
}

// New creates a new extractor
func New(unshortener Unshortener) *Extractor {
	return &Extractor{
		unshortener: unshortener,
		logger:      slog.Default(),
	}
}

// Extract returns the tweet IDs referenced by text, deduplicated in first-seen order.
// Short links that cannot be resolved are skipped. Returns nil when nothing matches.
func (e *Extractor) Extract(ctx context.Context, text string) []domain.PostID {
	var expanded strings.Builder
	expanded.WriteString(text)

	for _, token := range shortLinkRegex.FindAllString(text, -1) {
		link := "https://" + token
		long, err := e.unshortener.Resolve(ctx, link)
		if err != nil {
			e.logger.InfoContext(ctx, "Could not unshorten link", "link", link, "error", err)
			continue
		}
		e.logger.InfoContext(ctx, "Unshortened link", "link", link, "resolved", long)
		expanded.WriteString("\n")
		expanded.WriteString(long)
	}

	ids := lo.Map(postURLRegex.FindAllStringSubmatch(expanded.String(), -1), func(match []string, _ int) domain.PostID {
		return domain.PostID(match[1])
	})
	if len(ids) == 0 {
		return nil
	}
	return lo.Uniq(ids)
}

// HTTPUnshortener resolves short links by following their redirects.
type HTTPUnshortener struct {
	client *http.Client
}

// NewHTTPUnshortener creates an unshortener using a client with the given timeout
func NewHTTPUnshortener(timeout time.Duration) *HTTPUnshortener {
	return &HTTPUnshortener{client: &http.Client{Timeout: timeout}}
}

func (u *HTTPUnshortener) Resolve(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", oops.With("link", link).Wrap(err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", oops.With("link", link, "context", "failed to follow redirect").Wrap(err)
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}
