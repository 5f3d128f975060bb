package tmdb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/errors"
)

// getMovie fetches movie details.
func (c *Client) getMovie(ctx context.Context, mediaID int64) (*catalog.Details, error) {
	var resp movieResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", mediaID), &resp); err != nil {
		return nil, err
	}

	countries := make([]string, 0, len(resp.ProductionCountries))
	for _, pc := range resp.ProductionCountries {
		countries = append(countries, pc.ISO31661)
	}

	return &catalog.Details{
		Title:            resp.Title,
		Overview:         resp.Overview,
		PosterURL:        imageURL(resp.PosterPath),
		BackdropURL:      imageURL(resp.BackdropPath),
		OriginalLanguage: resp.OriginalLanguage,
		SpokenLanguages:  languageCodes(resp.SpokenLanguages),
		OriginCountry:    countries,
	}, nil
}

// getTV fetches TV details. The episode count is the authoritative total
// for progress tracking.
func (c *Client) getTV(ctx context.Context, mediaID int64) (*catalog.Details, error) {
	var resp tvResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d", mediaID), &resp); err != nil {
		return nil, err
	}

	details := &catalog.Details{
		Title:            resp.Name,
		Overview:         resp.Overview,
		PosterURL:        imageURL(resp.PosterPath),
		BackdropURL:      imageURL(resp.BackdropPath),
		OriginalLanguage: resp.OriginalLanguage,
		SpokenLanguages:  languageCodes(resp.SpokenLanguages),
		OriginCountry:    resp.OriginCountry,
	}
	if resp.NumberOfEpisodes > 0 {
		total := resp.NumberOfEpisodes
		details.TotalEpisodes = &total
	}
	return details, nil
}

// getJSON performs a GET against the API and decodes the response into dest.
// 404 maps to a not-found domain error; everything else non-200 is upstream.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	u := c.baseURL + path + "?" + url.Values{"api_key": {c.apiKey}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Internal("create catalog request").WithCause(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Upstream("catalog request failed").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return errors.NotFoundf("media not found in catalog")
	default:
		var status statusResponse
		_ = json.UnmarshalRead(resp.Body, &status)
		c.logger.Warn("catalog returned error",
			"status", resp.StatusCode,
			"message", status.StatusMessage,
		)
		return errors.Upstreamf("catalog status %d", resp.StatusCode)
	}

	if err := json.UnmarshalRead(resp.Body, dest); err != nil {
		return errors.Upstream("parse catalog response").WithCause(err)
	}
	return nil
}

// imageURL turns a TMDB image path into a full URL. Empty stays empty.
func imageURL(path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + path
}

// languageCodes flattens spoken language entries to ISO 639-1 codes.
func languageCodes(langs []spokenLanguage) []string {
	if len(langs) == 0 {
		return nil
	}
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		codes = append(codes, l.ISO6391)
	}
	return codes
}
