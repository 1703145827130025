package imagefetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/img.png", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("pngbytes"))
	}))
	defer srv.Close()

	got, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), srv.URL+"/img.png")

	require.NoError(t, err)
	assert.Equal(t, []byte("pngbytes"), got)
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), srv.URL+"/missing.png")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(5*time.Second).WithMaxBytes(32).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)

	got, err := NewHTTPFetcher(5*time.Second).WithMaxBytes(64).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, got, 64)
}

func TestFetch_BadURL(t *testing.T) {
	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), "://nope")
	assert.Error(t, err)
}

func TestFetch_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPFetcher(0).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
