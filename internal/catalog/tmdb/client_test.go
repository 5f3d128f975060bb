package tmdb_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medialogapp/medialog-server/internal/catalog/tmdb"
	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestGetDetailsMovie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"overview": "A hacker discovers reality.",
			"poster_path": "/matrix.jpg",
			"original_language": "en",
			"spoken_languages": [{"iso_639_1": "en"}],
			"production_countries": [{"iso_3166_1": "US"}]
		}`))
	}))
	defer srv.Close()

	c := tmdb.NewClient("test-key", testLogger(), tmdb.WithBaseURL(srv.URL))
	details, err := c.GetDetails(context.Background(), domain.MediaTypeMovie, 603)
	require.NoError(t, err)

	assert.Equal(t, "The Matrix", details.Title)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", details.PosterURL)
	assert.Equal(t, "en", details.OriginalLanguage)
	assert.Equal(t, []string{"US"}, details.OriginCountry)
	assert.Nil(t, details.TotalEpisodes)
}

func TestGetDetailsTV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/5", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 5,
			"name": "Cowboy Bebop",
			"overview": "Bounty hunters in space.",
			"original_language": "ja",
			"spoken_languages": [{"iso_639_1": "ja"}],
			"origin_country": ["JP"],
			"number_of_episodes": 26
		}`))
	}))
	defer srv.Close()

	c := tmdb.NewClient("test-key", testLogger(), tmdb.WithBaseURL(srv.URL))
	details, err := c.GetDetails(context.Background(), domain.MediaTypeTV, 5)
	require.NoError(t, err)

	assert.Equal(t, "Cowboy Bebop", details.Title)
	assert.Equal(t, "ja", details.OriginalLanguage)
	require.NotNil(t, details.TotalEpisodes)
	assert.Equal(t, 26, *details.TotalEpisodes)

	// The anime type goes through the TV endpoint too.
	details, err = c.GetDetails(context.Background(), domain.MediaTypeAnime, 5)
	require.NoError(t, err)
	assert.Equal(t, "Cowboy Bebop", details.Title)
}

func TestGetDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_code": 34, "status_message": "not found"}`))
	}))
	defer srv.Close()

	c := tmdb.NewClient("test-key", testLogger(), tmdb.WithBaseURL(srv.URL))
	_, err := c.GetDetails(context.Background(), domain.MediaTypeMovie, 999999)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetDetailsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := tmdb.NewClient("test-key", testLogger(), tmdb.WithBaseURL(srv.URL))
	_, err := c.GetDetails(context.Background(), domain.MediaTypeMovie, 603)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := tmdb.NewClient("test-key", testLogger(), tmdb.WithBaseURL(srv.URL))
	ctx := context.Background()

	for range 5 {
		_, err := c.GetDetails(ctx, domain.MediaTypeMovie, 603)
		require.Error(t, err)
	}

	// Breaker is open now; calls fail fast with an upstream error.
	_, err := c.GetDetails(ctx, domain.MediaTypeMovie, 603)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := tmdb.NewClient("test-key", testLogger(), tmdb.WithBaseURL(srv.URL))
	ctx := context.Background()

	for range 10 {
		_, err := c.GetDetails(ctx, domain.MediaTypeMovie, 999999)
		// Still the not-found answer, never a breaker-open upstream error.
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	}
}
