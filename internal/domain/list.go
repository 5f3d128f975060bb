package domain

import "time"

// ListStatus is the bucket a list item sits in.
type ListStatus string

// List status buckets.
const (
	StatusWatching  ListStatus = "watching"
	StatusCompleted ListStatus = "completed"
	StatusPlanned   ListStatus = "planned"
	StatusDropped   ListStatus = "dropped"
	StatusOnHold    ListStatus = "onHold"
)

// Valid reports whether the status is a recognized value.
func (s ListStatus) Valid() bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusPlanned, StatusDropped, StatusOnHold:
		return true
	default:
		return false
	}
}

// ListItem is a user's list membership record for one media item.
// Unique per (UserID, MediaID, MediaType).
type ListItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MediaID   int64     `json:"media_id"`
	MediaType MediaType `json:"media_type"`

	Status ListStatus `json:"status"`
	Rating *int       `json:"rating,omitempty"` // 1-10
	Notes  string     `json:"notes,omitempty"`

	// Cached display fields from the catalog.
	Title       string `json:"title,omitempty"`
	Overview    string `json:"overview,omitempty"`
	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`

	// Classification signals, cached so a later reclassification
	// does not require a catalog round trip.
	OriginalLanguage string   `json:"original_language,omitempty"`
	OriginCountry    []string `json:"origin_country,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Signals reconstructs classifier input from the cached display fields.
func (li *ListItem) Signals() RawMediaSignals {
	return RawMediaSignals{
		OriginalLanguage: li.OriginalLanguage,
		OriginCountry:    li.OriginCountry,
	}
}

// MergeFrom folds a stale-typed duplicate into this item, preferring the
// newly supplied status/rating/notes already set on the receiver and taking
// display fields from the duplicate only where the receiver has none.
func (li *ListItem) MergeFrom(stale *ListItem) {
	if li.Title == "" {
		li.Title = stale.Title
	}
	if li.Overview == "" {
		li.Overview = stale.Overview
	}
	if li.PosterURL == "" {
		li.PosterURL = stale.PosterURL
	}
	if li.BackdropURL == "" {
		li.BackdropURL = stale.BackdropURL
	}
	if li.OriginalLanguage == "" {
		li.OriginalLanguage = stale.OriginalLanguage
	}
	if len(li.OriginCountry) == 0 {
		li.OriginCountry = stale.OriginCountry
	}
	if li.Rating == nil {
		li.Rating = stale.Rating
	}
	if li.Notes == "" {
		li.Notes = stale.Notes
	}
	if stale.CreatedAt.Before(li.CreatedAt) && !stale.CreatedAt.IsZero() {
		li.CreatedAt = stale.CreatedAt
	}
}
