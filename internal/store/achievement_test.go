package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAndGetAchievement(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	rec := &domain.AchievementRecord{
		ID:         "ach-1",
		UserID:     "u1",
		Category:   domain.CategoryAnime,
		Tier:       domain.TierBronze,
		Progress:   24,
		Target:     10,
		Completed:  true,
		UnlockedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.UpsertAchievement(ctx, rec))

	got, err := s.GetAchievement(ctx, "u1", domain.CategoryAnime, domain.TierBronze)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, 24, got.Progress)
	require.NotNil(t, got.UnlockedAt)

	_, err = s.GetAchievement(ctx, "u1", domain.CategoryAnime, domain.TierSilver)
	assert.ErrorIs(t, err, store.ErrAchievementNotFound)
}

func TestGetAchievementsForUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for _, tier := range []domain.Tier{domain.TierBronze, domain.TierSilver} {
		require.NoError(t, s.UpsertAchievement(ctx, &domain.AchievementRecord{
			ID:        "ach-" + string(tier),
			UserID:    "u1",
			Category:  domain.CategoryManga,
			Tier:      tier,
			Target:    5,
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}
	require.NoError(t, s.UpsertAchievement(ctx, &domain.AchievementRecord{
		ID: "ach-other", UserID: "u2", Category: domain.CategoryManga,
		Tier: domain.TierBronze, Target: 5, CreatedAt: now, UpdatedAt: now,
	}))

	recs, err := s.GetAchievementsForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = s.GetAchievementsForUser(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
