package domain_test

import (
	"testing"
	"time"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMergeFromPrefersReceiver(t *testing.T) {
	rating := 8
	staleRating := 5
	now := time.Now()

	fresh := &domain.ListItem{
		ID:        "li-new",
		UserID:    "u1",
		MediaID:   5,
		MediaType: domain.MediaTypeAnime,
		Status:    domain.StatusCompleted,
		Rating:    &rating,
		Notes:     "rewatched",
		Title:     "New Title",
		CreatedAt: now,
	}
	stale := &domain.ListItem{
		ID:               "li-old",
		Status:           domain.StatusWatching,
		Rating:           &staleRating,
		Notes:            "old notes",
		Title:            "Old Title",
		Overview:         "old overview",
		PosterURL:        "/old.jpg",
		OriginalLanguage: "ja",
		CreatedAt:        now.Add(-time.Hour),
	}

	fresh.MergeFrom(stale)

	// Newly supplied values win.
	assert.Equal(t, domain.StatusCompleted, fresh.Status)
	assert.Equal(t, 8, *fresh.Rating)
	assert.Equal(t, "rewatched", fresh.Notes)
	assert.Equal(t, "New Title", fresh.Title)

	// Gaps are filled from the stale record.
	assert.Equal(t, "old overview", fresh.Overview)
	assert.Equal(t, "/old.jpg", fresh.PosterURL)
	assert.Equal(t, "ja", fresh.OriginalLanguage)

	// The earliest creation time is kept.
	assert.Equal(t, now.Add(-time.Hour), fresh.CreatedAt)
}

func TestMergeFromFillsMissingUserFields(t *testing.T) {
	fresh := &domain.ListItem{Status: domain.StatusPlanned, CreatedAt: time.Now()}
	staleRating := 7
	stale := &domain.ListItem{Rating: &staleRating, Notes: "keep me"}

	fresh.MergeFrom(stale)

	assert.Equal(t, 7, *fresh.Rating)
	assert.Equal(t, "keep me", fresh.Notes)
}

func TestListStatusValid(t *testing.T) {
	for _, s := range []domain.ListStatus{
		domain.StatusWatching, domain.StatusCompleted, domain.StatusPlanned,
		domain.StatusDropped, domain.StatusOnHold,
	} {
		assert.True(t, s.Valid())
	}
	assert.False(t, domain.ListStatus("paused").Valid())
}
