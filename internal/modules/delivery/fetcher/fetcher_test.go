package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sharedErrors "github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Query().Get("name") == "orig" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(server.Client())

	assert.NoError(t, f.Probe(context.Background(), server.URL+"/media/a?format=jpg&name=orig"))
	assert.ErrorIs(t, f.Probe(context.Background(), server.URL+"/media/a?format=jpg&name=large"), sharedErrors.ErrMediaUnavailable)
}

func TestOpen_ReportsContentLength(t *testing.T) {
	payload := []byte("0123456789")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write(payload)
	}))
	defer server.Close()

	remote, err := New(nil).Open(context.Background(), server.URL+"/v.mp4")
	require.NoError(t, err)
	defer remote.Body.Close()

	assert.Equal(t, int64(len(payload)), remote.Size)
	got, err := io.ReadAll(remote.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestOpen_UnknownSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		w.Write([]byte("chunked"))
	}))
	defer server.Close()

	remote, err := New(nil).Open(context.Background(), server.URL)
	require.NoError(t, err)
	defer remote.Body.Close()

	assert.Equal(t, int64(-1), remote.Size)
}

func TestOpen_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	remote, err := New(nil).Open(context.Background(), server.URL)

	assert.Nil(t, remote)
	assert.ErrorIs(t, err, sharedErrors.ErrMediaUnavailable)
}
