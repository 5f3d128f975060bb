// Package jikan provides a Jikan (MyAnimeList) client for manga metadata.
package jikan

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
)

const defaultBaseURL = "https://api.jikan.moe/v4"

// Client provides access to the Jikan API for print media details.
type Client struct {
	baseURL     string
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

// NewClient creates a new Jikan client.
// Jikan allows 3 requests per second; the limiter keeps us under that. The
// circuit breaker matches the TMDB client: 5 consecutive failures open it
// for 30 seconds and calls fail fast with an upstream error.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(334*time.Millisecond), 3),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*catalog.Details](gobreaker.Settings{
		Name:    "jikan",
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

// GetDetails implements catalog.Provider for manga and manhwa types.
func (c *Client) GetDetails(ctx context.Context, _ domain.MediaType, mediaID int64) (*catalog.Details, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	details, err := c.breaker.Execute(func() (*catalog.Details, error) {
		return c.getManga(ctx, mediaID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Upstream("catalog circuit open").WithCause(err)
	}
	return details, err
}

// getManga fetches and maps one manga record.
func (c *Client) getManga(ctx context.Context, mediaID int64) (*catalog.Details, error) {
	u := fmt.Sprintf("%s/manga/%d", c.baseURL, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Internal("create catalog request").WithCause(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream("catalog request failed").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFound("media not found in catalog")
	default:
		c.logger.Warn("catalog returned error", "status", resp.StatusCode)
		return nil, errors.Upstreamf("catalog status %d", resp.StatusCode)
	}

	var envelope mangaEnvelope
	if err := json.UnmarshalRead(resp.Body, &envelope); err != nil {
		return nil, errors.Upstream("parse catalog response").WithCause(err)
	}

	return envelope.Data.toDetails(), nil
}

// mangaEnvelope is Jikan's response wrapper.
type mangaEnvelope struct {
	Data mangaData `json:"data"`
}

// mangaData is the raw Jikan manga payload (fields we use).
type mangaData struct {
	MalID    int64  `json:"mal_id"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Type     string `json:"type"` // "Manga", "Manhwa", "Manhua", ...
	Chapters *int   `json:"chapters"`
	Images   struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
}

// toDetails maps the payload onto the engine's detail shape.
// Jikan carries no language fields; the publication type stands in for the
// origin signals the classifier needs (Manhwa is Korean by definition).
func (m *mangaData) toDetails() *catalog.Details {
	poster := m.Images.JPG.LargeImageURL
	if poster == "" {
		poster = m.Images.JPG.ImageURL
	}

	details := &catalog.Details{
		Title:         m.Title,
		Overview:      m.Synopsis,
		PosterURL:     poster,
		TotalChapters: m.Chapters,
	}

	switch m.Type {
	case "Manhwa":
		details.OriginalLanguage = "ko"
		details.OriginCountry = []string{"KR"}
	case "Manhua":
		details.OriginalLanguage = "zh"
		details.OriginCountry = []string{"CN"}
	case "Manga":
		details.OriginalLanguage = "ja"
		details.OriginCountry = []string{"JP"}
	}

	return details
}
