// Package tmdb provides a TMDB client for movie and TV metadata.
package tmdb

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/w500"
)

// Client provides access to the TMDB API for screen media details.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[*catalog.Details]
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new TMDB client.
// Rate limited to ~40 requests per second with a small burst, which stays
// well under TMDB's documented limits. A circuit breaker shields the add
// path from a misbehaving upstream: after 5 consecutive failures the
// breaker opens for 30 seconds and calls fail fast with an upstream error.
func NewClient(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(25*time.Millisecond), 10),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*catalog.Details](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A known-missing item is a valid answer, not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errors.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("catalog breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return c
}

// GetDetails implements catalog.Provider for movie, tv, and anime types.
// Anime is fetched through the TV endpoint; TMDB has no separate anime
// concept, the classifier decides that downstream.
func (c *Client) GetDetails(ctx context.Context, mediaType domain.MediaType, mediaID int64) (*catalog.Details, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	details, err := c.breaker.Execute(func() (*catalog.Details, error) {
		switch mediaType {
		case domain.MediaTypeMovie:
			return c.getMovie(ctx, mediaID)
		default:
			return c.getTV(ctx, mediaID)
		}
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Upstream("catalog circuit open").WithCause(err)
	}
	return details, err
}
