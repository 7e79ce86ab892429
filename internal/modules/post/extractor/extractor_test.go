package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUnshortener struct {
	links map[string]string
	calls []string
}

func (f *fakeUnshortener) Resolve(_ context.Context, link string) (string, error) {
	f.calls = append(f.calls, link)
	if long, ok := f.links[link]; ok {
		return long, nil
	}
	return "", errors.New("redirect failed")
}

func TestExtract_MatchesSupportedURLShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []domain.PostID
	}{
		{
			name: "twitter status",
			text: "look https://twitter.com/jack/status/20",
			want: []domain.PostID{"20"},
		},
		{
			name: "x statuses",
			text: "https://x.com/someone/statuses/1234567890123456789?s=20",
			want: []domain.PostID{"1234567890123456789"},
		},
		{
			name: "web alias",
			text: "https://twitter.com/i/web/555",
			want: []domain.PostID{"555"},
		},
		{
			name: "several links keep order",
			text: "https://x.com/a/status/3 and https://twitter.com/b/status/1 then https://x.com/c/status/2",
			want: []domain.PostID{"3", "1", "2"},
		},
		{
			name: "unrelated domain",
			text: "https://example.com/a/status/3",
			want: nil,
		},
		{
			name: "no link",
			text: "hello there",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&fakeUnshortener{})
			assert.Equal(t, tt.want, e.Extract(context.Background(), tt.text))
		})
	}
}

func TestExtract_DeduplicatesPreservingFirstSeenOrder(t *testing.T) {
	e := New(&fakeUnshortener{})

	ids := e.Extract(context.Background(),
		"https://x.com/a/status/7 https://twitter.com/b/status/9 https://x.com/a/status/7 https://x.com/z/status/9 https://x.com/q/status/8")

	assert.Equal(t, []domain.PostID{"7", "9", "8"}, ids)
}

func TestExtract_ResolvesShortLinks(t *testing.T) {
	unshortener := &fakeUnshortener{links: map[string]string{
		"https://t.co/abc123": "https://twitter.com/jack/status/42",
	}}
	e := New(unshortener)

	ids := e.Extract(context.Background(), "https://x.com/a/status/1 and https://t.co/abc123")

	assert.Equal(t, []domain.PostID{"1", "42"}, ids)
	assert.Equal(t, []string{"https://t.co/abc123"}, unshortener.calls)
}

func TestExtract_FailedShortLinkIsSkipped(t *testing.T) {
	unshortener := &fakeUnshortener{links: map[string]string{
		"https://t.co/good": "https://x.com/b/status/2",
	}}
	e := New(unshortener)

	ids := e.Extract(context.Background(), "t.co/broken https://t.co/good")
	assert.Equal(t, []domain.PostID{"2"}, ids)

	assert.Nil(t, e.Extract(context.Background(), "only https://t.co/broken here"))
}

func TestHTTPUnshortener_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final/status/99", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final/status/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	u := NewHTTPUnshortener(5 * time.Second)
	long, err := u.Resolve(context.Background(), server.URL+"/short")

	require.NoError(t, err)
	assert.Equal(t, server.URL+"/final/status/99", long)
}

func TestHTTPUnshortener_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	u := NewHTTPUnshortener(time.Second)
	_, err := u.Resolve(context.Background(), url+"/short")

	assert.Error(t, err)
}
