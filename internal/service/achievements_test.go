package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/service"
)

func TestRecalculateCategoryIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.catalog.details[catalogKey(domain.MediaTypeTV, 5)] = &catalog.Details{
		OriginalLanguage: "ja",
		TotalEpisodes:    intPtr(24),
	}
	_, err := env.library.AddToList(ctx, "u1", service.AddToListRequest{
		MediaID:   5,
		MediaType: domain.MediaTypeTV,
		Status:    domain.StatusCompleted,
	})
	require.NoError(t, err)

	first, err := env.store.GetAchievement(ctx, "u1", domain.CategoryAnime, domain.TierBronze)
	require.NoError(t, err)
	require.True(t, first.Completed)
	require.NotNil(t, first.UnlockedAt)

	// Recalculating again recomputes the same aggregate and leaves the
	// unlock timestamp alone.
	_, err = env.achievements.RecalculateCategory(ctx, "u1", domain.CategoryAnime)
	require.NoError(t, err)
	_, err = env.achievements.RecalculateCategory(ctx, "u1", domain.CategoryAnime)
	require.NoError(t, err)

	again, err := env.store.GetAchievement(ctx, "u1", domain.CategoryAnime, domain.TierBronze)
	require.NoError(t, err)
	assert.Equal(t, first.Progress, again.Progress)
	require.NotNil(t, again.UnlockedAt)
	assert.True(t, first.UnlockedAt.Equal(*again.UnlockedAt))
}

func TestRecalculateUnlocksMultipleTiers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 60 anime episodes clears bronze (10) and silver (50) but not gold (100).
	addWatching(t, env, 1, domain.MediaTypeAnime)
	_, err := env.progress.UpdateEpisodes(ctx, "u1", domain.MediaTypeAnime, 1, service.UpdateEpisodesRequest{
		CurrentEpisode: 60,
		TotalEpisodes:  intPtr(100),
	})
	require.NoError(t, err)

	completed, err := env.achievements.RecalculateCategory(ctx, "u1", domain.CategoryAnime)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, domain.TierBronze, completed[0].Tier)
	assert.Equal(t, domain.TierSilver, completed[1].Tier)

	gold, err := env.store.GetAchievement(ctx, "u1", domain.CategoryAnime, domain.TierGold)
	require.NoError(t, err)
	assert.False(t, gold.Completed)
	assert.Equal(t, 60, gold.Progress)
}

func TestAnimeMovieAggregate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Five completed anime entries with no episode totals count as films.
	for i := range 5 {
		_, err := env.library.AddToList(ctx, "u1", service.AddToListRequest{
			MediaID:   int64(100 + i),
			MediaType: domain.MediaTypeAnime,
			Status:    domain.StatusCompleted,
		})
		require.NoError(t, err)
	}

	bronze, err := env.store.GetAchievement(ctx, "u1", domain.CategoryAnimeMovies, domain.TierBronze)
	require.NoError(t, err)
	assert.True(t, bronze.Completed)
	assert.Equal(t, 5, bronze.Progress)

	// An episodic series with a known total stays out of this aggregate.
	env.catalog.details[catalogKey(domain.MediaTypeAnime, 200)] = &catalog.Details{
		OriginalLanguage: "ja",
		TotalEpisodes:    intPtr(12),
	}
	_, err = env.library.AddToList(ctx, "u1", service.AddToListRequest{
		MediaID:   200,
		MediaType: domain.MediaTypeAnime,
		Status:    domain.StatusCompleted,
	})
	require.NoError(t, err)

	bronze, err = env.store.GetAchievement(ctx, "u1", domain.CategoryAnimeMovies, domain.TierBronze)
	require.NoError(t, err)
	assert.Equal(t, 5, bronze.Progress)
}

func TestMangaAggregateCountsBothPrintTypes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := range 3 {
		_, err := env.library.AddToList(ctx, "u1", service.AddToListRequest{
			MediaID:   int64(10 + i),
			MediaType: domain.MediaTypeManga,
			Status:    domain.StatusCompleted,
		})
		require.NoError(t, err)
	}
	for i := range 2 {
		_, err := env.library.AddToList(ctx, "u1", service.AddToListRequest{
			MediaID:   int64(20 + i),
			MediaType: domain.MediaTypeManhwa,
			Status:    domain.StatusCompleted,
		})
		require.NoError(t, err)
	}

	bronze, err := env.store.GetAchievement(ctx, "u1", domain.CategoryManga, domain.TierBronze)
	require.NoError(t, err)
	assert.True(t, bronze.Completed)
	assert.Equal(t, 5, bronze.Progress)
}

func TestGetUserAchievementsCreatesLadders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Fresh user: the summary still shows every category's full ladder.
	summary, err := env.achievements.GetUserAchievements(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, summary, len(domain.Categories()))

	anime := summary[domain.CategoryAnime]
	assert.Equal(t, 0, anime.CurrentProgress)
	require.Len(t, anime.Tiers, 5)
	assert.Equal(t, domain.TierBronze, anime.Tiers[0].Tier)
	assert.Equal(t, 10, anime.Tiers[0].Target)
	assert.Equal(t, domain.TierDiamond, anime.Tiers[4].Tier)
	assert.Equal(t, 1000, anime.Tiers[4].Target)

	series := summary[domain.CategorySeries]
	require.Len(t, series.Tiers, 4)
}

func TestCheckAchievements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.catalog.details[catalogKey(domain.MediaTypeTV, 5)] = &catalog.Details{
		OriginalLanguage: "ja",
		TotalEpisodes:    intPtr(24),
	}
	_, err := env.library.AddToList(ctx, "u1", service.AddToListRequest{
		MediaID:   5,
		MediaType: domain.MediaTypeTV,
		Status:    domain.StatusCompleted,
	})
	require.NoError(t, err)

	unlocked, err := env.achievements.CheckAchievements(ctx, "u1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, unlocked)
	for _, rec := range unlocked {
		assert.True(t, rec.Completed)
	}

	category := domain.CategoryManga
	unlocked, err = env.achievements.CheckAchievements(ctx, "u1", &category)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}
