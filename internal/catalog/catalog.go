// Package catalog defines the upstream catalog contract the engine consumes.
//
// The engine only ever sees the Provider interface; concrete clients live in
// subpackages (tmdb for screen media, jikan for print media) and are composed
// by the Router.
package catalog

import (
	"context"

	"github.com/medialogapp/medialog-server/internal/domain"
)

// Details is the metadata the engine needs from an upstream catalog:
// display fields to cache on the list item, classification signals,
// and authoritative totals for progress tracking.
type Details struct {
	Title       string
	Overview    string
	PosterURL   string
	BackdropURL string

	OriginalLanguage string
	SpokenLanguages  []string
	OriginCountry    []string

	TotalEpisodes *int
	TotalChapters *int
}

// Signals extracts the classifier input from the details.
func (d *Details) Signals() domain.RawMediaSignals {
	return domain.RawMediaSignals{
		OriginalLanguage: d.OriginalLanguage,
		SpokenLanguages:  d.SpokenLanguages,
		OriginCountry:    d.OriginCountry,
	}
}

// Provider fetches media metadata by type and id.
//
// Implementations fail with errors.ErrNotFound when the upstream does not
// know the item, and errors.ErrUpstream when the upstream is unreachable or
// misbehaving. Callers on the add path treat Upstream as best-effort and
// degrade rather than fail.
type Provider interface {
	GetDetails(ctx context.Context, mediaType domain.MediaType, mediaID int64) (*Details, error)
}
