package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
	"github.com/medialogapp/medialog-server/internal/id"
	"github.com/medialogapp/medialog-server/internal/store"
)

// AchievementService computes per-category aggregates and advances tier
// records. Recalculation is idempotent: the aggregate is computed fresh from
// the stores each time, never incremented.
type AchievementService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAchievementService creates a new achievement service.
func NewAchievementService(store *store.Store, logger *slog.Logger) *AchievementService {
	return &AchievementService{
		store:  store,
		logger: logger,
	}
}

// aggregate computes the current value of a category's counted unit.
func (s *AchievementService) aggregate(ctx context.Context, userID string, category domain.Category) (int, error) {
	switch category {
	case domain.CategoryAnime:
		return s.store.SumCurrentEpisodes(ctx, userID, domain.MediaTypeAnime)
	case domain.CategorySeries:
		return s.store.SumCurrentEpisodes(ctx, userID, domain.MediaTypeTV)
	case domain.CategoryMovies:
		return s.store.CountListItems(ctx, userID, domain.StatusCompleted, domain.MediaTypeMovie)
	case domain.CategoryAnimeMovies:
		return s.store.CountCompletedWithoutEpisodes(ctx, userID, domain.MediaTypeAnime)
	case domain.CategoryManga:
		return s.store.CountListItems(ctx, userID, domain.StatusCompleted, domain.MediaTypeManga, domain.MediaTypeManhwa)
	default:
		return 0, errors.Validationf("unknown achievement category %q", category)
	}
}

// RecalculateCategory recomputes one category's aggregate and advances every
// tier record in ascending target order. Records are created lazily on first
// recalculation. Completion is a one-way ratchet; a tier unlocked once stays
// unlocked even if the aggregate later drops.
// Returns the records that are completed after the pass.
func (s *AchievementService) RecalculateCategory(ctx context.Context, userID string, category domain.Category) ([]*domain.AchievementRecord, error) {
	if !category.Valid() {
		return nil, errors.Validationf("unknown achievement category %q", category)
	}

	aggregate, err := s.aggregate(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var completed []*domain.AchievementRecord

	for _, tt := range domain.Ladder(category) {
		rec, err := s.store.GetAchievement(ctx, userID, category, tt.Tier)
		if errors.Is(err, store.ErrAchievementNotFound) {
			recID, idErr := id.Generate("ach")
			if idErr != nil {
				return nil, idErr
			}
			rec = &domain.AchievementRecord{
				ID:        recID,
				UserID:    userID,
				Category:  category,
				Tier:      tt.Tier,
				Target:    tt.Target,
				CreatedAt: now,
			}
		} else if err != nil {
			return nil, err
		}

		if rec.Advance(aggregate, now) {
			s.logger.Info("achievement unlocked",
				"user_id", userID,
				"category", category,
				"tier", tt.Tier,
				"target", tt.Target,
				"progress", aggregate,
			)
		}

		if err := s.store.UpsertAchievement(ctx, rec); err != nil {
			return nil, err
		}
		if rec.Completed {
			completed = append(completed, rec)
		}
	}

	s.logger.Debug("recalculated achievement category",
		"user_id", userID,
		"category", category,
		"aggregate", aggregate,
		"completed_tiers", len(completed),
	)

	return completed, nil
}

// RecalculateAll runs RecalculateCategory for every category independently.
// A failure in one category never aborts the others; the joined error is
// returned for logging.
func (s *AchievementService) RecalculateAll(ctx context.Context, userID string) error {
	var errs error
	for _, category := range domain.Categories() {
		if _, err := s.RecalculateCategory(ctx, userID, category); err != nil {
			s.logger.Error("category recalculation failed",
				"user_id", userID,
				"category", category,
				"error", err,
			)
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// CategoryAchievements is one category's view in the achievements summary.
type CategoryAchievements struct {
	CurrentProgress int                         `json:"current_progress"`
	Tiers           []*domain.AchievementRecord `json:"tiers"`
}

// GetUserAchievements returns the full achievement state per category.
// Tier records are created lazily here, so a first read sees the whole
// ladder rather than an empty map.
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID string) (map[domain.Category]CategoryAchievements, error) {
	result := make(map[domain.Category]CategoryAchievements, len(domain.Categories()))

	for _, category := range domain.Categories() {
		if _, err := s.RecalculateCategory(ctx, userID, category); err != nil {
			return nil, err
		}

		var (
			tiers    []*domain.AchievementRecord
			progress int
		)
		for _, tt := range domain.Ladder(category) {
			rec, err := s.store.GetAchievement(ctx, userID, category, tt.Tier)
			if err != nil {
				return nil, err
			}
			tiers = append(tiers, rec)
			progress = rec.Progress
		}

		result[category] = CategoryAchievements{
			CurrentProgress: progress,
			Tiers:           tiers,
		}
	}

	return result, nil
}

// CheckAchievements returns the unlocked subset of a user's records,
// optionally restricted to one category. Reads stored state only; callers
// wanting fresh numbers trigger a recalculation first.
func (s *AchievementService) CheckAchievements(ctx context.Context, userID string, category *domain.Category) ([]*domain.AchievementRecord, error) {
	if category != nil && !category.Valid() {
		return nil, errors.Validationf("unknown achievement category %q", *category)
	}

	recs, err := s.store.GetAchievementsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked := make([]*domain.AchievementRecord, 0, len(recs))
	for _, rec := range recs {
		if !rec.Completed {
			continue
		}
		if category != nil && rec.Category != *category {
			continue
		}
		unlocked = append(unlocked, rec)
	}
	return unlocked, nil
}
