package jikan_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medialogapp/medialog-server/internal/catalog/jikan"
	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestGetDetailsManga(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manga/2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"mal_id": 2,
				"title": "Berserk",
				"synopsis": "A lone swordsman.",
				"type": "Manga",
				"chapters": 364,
				"images": {"jpg": {"image_url": "/small.jpg", "large_image_url": "/large.jpg"}}
			}
		}`))
	}))
	defer srv.Close()

	c := jikan.NewClient(testLogger(), jikan.WithBaseURL(srv.URL))
	details, err := c.GetDetails(context.Background(), domain.MediaTypeManga, 2)
	require.NoError(t, err)

	assert.Equal(t, "Berserk", details.Title)
	assert.Equal(t, "/large.jpg", details.PosterURL)
	assert.Equal(t, "ja", details.OriginalLanguage)
	assert.Equal(t, []string{"JP"}, details.OriginCountry)
	require.NotNil(t, details.TotalChapters)
	assert.Equal(t, 364, *details.TotalChapters)
}

func TestGetDetailsManhwaSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"data": {
				"mal_id": 121496,
				"title": "Solo Leveling",
				"type": "Manhwa",
				"chapters": null,
				"images": {"jpg": {"image_url": "/sl.jpg"}}
			}
		}`))
	}))
	defer srv.Close()

	c := jikan.NewClient(testLogger(), jikan.WithBaseURL(srv.URL))
	details, err := c.GetDetails(context.Background(), domain.MediaTypeManga, 121496)
	require.NoError(t, err)

	// Publication type stands in for origin signals.
	assert.Equal(t, "ko", details.OriginalLanguage)
	assert.Equal(t, []string{"KR"}, details.OriginCountry)
	assert.Nil(t, details.TotalChapters)
	// Falls back to the small image when no large variant exists.
	assert.Equal(t, "/sl.jpg", details.PosterURL)

	// The classifier sees the signals and promotes the type.
	assert.Equal(t, domain.MediaTypeManhwa, domain.Classify(domain.MediaTypeManga, details.Signals()))
}

func TestGetDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := jikan.NewClient(testLogger(), jikan.WithBaseURL(srv.URL))
	_, err := c.GetDetails(context.Background(), domain.MediaTypeManga, 999999999)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetDetailsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := jikan.NewClient(testLogger(), jikan.WithBaseURL(srv.URL))
	_, err := c.GetDetails(context.Background(), domain.MediaTypeManga, 2)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := jikan.NewClient(testLogger(), jikan.WithBaseURL(srv.URL))
	ctx := context.Background()

	for range 5 {
		_, err := c.GetDetails(ctx, domain.MediaTypeManga, 2)
		require.Error(t, err)
	}

	// Breaker is open now; calls fail fast with an upstream error.
	_, err := c.GetDetails(ctx, domain.MediaTypeManga, 2)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := jikan.NewClient(testLogger(), jikan.WithBaseURL(srv.URL))
	ctx := context.Background()

	for range 6 {
		_, err := c.GetDetails(ctx, domain.MediaTypeManga, 999999999)
		// Still the not-found answer, never a breaker-open upstream error.
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	}
}
