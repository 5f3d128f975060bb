package domain

import "time"

// ProgressItem tracks consumption position for one media item.
// Unique per (UserID, MediaID, MediaType). Paired with the ListItem of the
// same key; both always share the same MediaType.
type ProgressItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MediaID   int64     `json:"media_id"`
	MediaType MediaType `json:"media_type"`

	CurrentEpisode int  `json:"current_episode"`
	TotalEpisodes  *int `json:"total_episodes,omitempty"`

	// Chapter fields mirror episodes for print media.
	CurrentChapter int  `json:"current_chapter"`
	TotalChapters  *int `json:"total_chapters,omitempty"`

	WatchedMinutes int `json:"watched_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgressItem creates a zeroed progress record for a media item.
func NewProgressItem(id, userID string, mediaID int64, mediaType MediaType) *ProgressItem {
	now := time.Now()
	return &ProgressItem{
		ID:        id,
		UserID:    userID,
		MediaID:   mediaID,
		MediaType: mediaType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SeedTotals fills unknown totals from catalog metadata. A stored total is
// authoritative and is never lowered here; the catalog value only replaces
// nil or raises the known count.
func (p *ProgressItem) SeedTotals(totalEpisodes, totalChapters *int) {
	if totalEpisodes != nil && (p.TotalEpisodes == nil || *totalEpisodes > *p.TotalEpisodes) {
		v := *totalEpisodes
		p.TotalEpisodes = &v
	}
	if totalChapters != nil && (p.TotalChapters == nil || *totalChapters > *p.TotalChapters) {
		v := *totalChapters
		p.TotalChapters = &v
	}
}

// CompleteEpisodes advances the current episode to the known total.
// No-op when the total is unknown or zero.
func (p *ProgressItem) CompleteEpisodes() {
	if p.TotalEpisodes != nil && *p.TotalEpisodes > 0 {
		p.CurrentEpisode = *p.TotalEpisodes
		p.UpdatedAt = time.Now()
	}
}

// ResetPosition clears the current position after list removal.
// Totals and chapter fields stay; only the position is invalidated.
func (p *ProgressItem) ResetPosition() {
	p.CurrentEpisode = 0
	p.WatchedMinutes = 0
	p.UpdatedAt = time.Now()
}

// EpisodeBoundsOK reports whether 0 <= current <= total holds
// (total only constrains when known and nonzero).
func (p *ProgressItem) EpisodeBoundsOK() bool {
	if p.CurrentEpisode < 0 {
		return false
	}
	if p.TotalEpisodes != nil && *p.TotalEpisodes > 0 && p.CurrentEpisode > *p.TotalEpisodes {
		return false
	}
	return true
}
