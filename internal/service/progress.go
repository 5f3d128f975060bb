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

// UpdateEpisodesRequest sets the absolute episode position.
type UpdateEpisodesRequest struct {
	CurrentEpisode int  `json:"current_episode" validate:"gte=0"`
	TotalEpisodes  *int `json:"total_episodes,omitempty" validate:"omitempty,gt=0"`
	WatchedMinutes *int `json:"watched_minutes,omitempty" validate:"omitempty,gte=0"`
}

// UpdateChaptersRequest sets the absolute chapter position.
type UpdateChaptersRequest struct {
	CurrentChapter int  `json:"current_chapter" validate:"gte=0"`
	TotalChapters  *int `json:"total_chapters,omitempty" validate:"omitempty,gt=0"`
}

// ProgressService handles consumption position updates. Updates are bound
// checked against the known total before any write, keyed to the list entry's
// canonical type even when the caller addresses a stale one.
type ProgressService struct {
	store      *store.Store
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(store *store.Store, dispatcher Dispatcher, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// resolve finds the list entry the progress update is for, following the
// legacy-equivalent key when the addressed type has been reclassified, then
// loads or lazily creates the paired progress record.
func (s *ProgressService) resolve(ctx context.Context, userID string, mediaType domain.MediaType, mediaID int64) (*domain.ProgressItem, error) {
	item, err := s.store.GetListItemByKey(ctx, userID, mediaType, mediaID)
	if errors.Is(err, store.ErrListItemNotFound) {
		legacy, ok := mediaType.LegacyEquivalent()
		if !ok {
			return nil, errors.NotFoundf("media %d is not on the list", mediaID)
		}
		item, err = s.store.GetListItemByKey(ctx, userID, legacy, mediaID)
		if errors.Is(err, store.ErrListItemNotFound) {
			return nil, errors.NotFoundf("media %d is not on the list", mediaID)
		}
	}
	if err != nil {
		return nil, err
	}

	progress, err := s.store.GetProgress(ctx, userID, item.MediaType, item.MediaID)
	if errors.Is(err, store.ErrProgressNotFound) {
		progressID, idErr := id.Generate("pr")
		if idErr != nil {
			return nil, idErr
		}
		return domain.NewProgressItem(progressID, userID, item.MediaID, item.MediaType), nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateEpisodes sets the episode position for an episodic entry.
// The position must not exceed the effective total - the stored total when
// known, else the total supplied in the same request. Violations fail before
// any state changes.
func (s *ProgressService) UpdateEpisodes(ctx context.Context, userID string, mediaType domain.MediaType, mediaID int64, req UpdateEpisodesRequest) (*domain.ProgressItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if !mediaType.Valid() {
		return nil, errors.Validationf("unknown media type %q", mediaType)
	}
	if !mediaType.Episodic() {
		return nil, errors.Validationf("%s entries track chapters, not episodes", mediaType)
	}

	progress, err := s.resolve(ctx, userID, mediaType, mediaID)
	if err != nil {
		return nil, err
	}

	effectiveTotal := progress.TotalEpisodes
	if effectiveTotal == nil {
		effectiveTotal = req.TotalEpisodes
	}
	if effectiveTotal != nil && *effectiveTotal > 0 && req.CurrentEpisode > *effectiveTotal {
		return nil, errors.Validationf("current_episode %d exceeds total of %d", req.CurrentEpisode, *effectiveTotal)
	}

	progress.SeedTotals(req.TotalEpisodes, nil)
	progress.CurrentEpisode = req.CurrentEpisode
	if req.WatchedMinutes != nil {
		progress.WatchedMinutes = *req.WatchedMinutes
	}
	progress.UpdatedAt = time.Now()

	if err := s.store.UpsertProgress(ctx, progress); err != nil {
		return nil, err
	}

	s.dispatch(userID, progress.MediaType)
	return progress, nil
}

// UpdateChapters sets the chapter position for a print entry, mirroring the
// episode bound check.
func (s *ProgressService) UpdateChapters(ctx context.Context, userID string, mediaType domain.MediaType, mediaID int64, req UpdateChaptersRequest) (*domain.ProgressItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if !mediaType.Valid() {
		return nil, errors.Validationf("unknown media type %q", mediaType)
	}
	if mediaType.Episodic() {
		return nil, errors.Validationf("%s entries track episodes, not chapters", mediaType)
	}

	progress, err := s.resolve(ctx, userID, mediaType, mediaID)
	if err != nil {
		return nil, err
	}

	effectiveTotal := progress.TotalChapters
	if effectiveTotal == nil {
		effectiveTotal = req.TotalChapters
	}
	if effectiveTotal != nil && *effectiveTotal > 0 && req.CurrentChapter > *effectiveTotal {
		return nil, errors.Validationf("current_chapter %d exceeds total of %d", req.CurrentChapter, *effectiveTotal)
	}

	progress.SeedTotals(nil, req.TotalChapters)
	progress.CurrentChapter = req.CurrentChapter
	progress.UpdatedAt = time.Now()

	if err := s.store.UpsertProgress(ctx, progress); err != nil {
		return nil, err
	}

	// Chapter positions feed no aggregate; the manga category counts
	// completed list items, so no recalculation is owed here.
	return progress, nil
}

// GetProgress returns the progress record for a media item, following the
// legacy-equivalent key like updates do.
func (s *ProgressService) GetProgress(ctx context.Context, userID string, mediaType domain.MediaType, mediaID int64) (*domain.ProgressItem, error) {
	progress, err := s.store.GetProgress(ctx, userID, mediaType, mediaID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, store.ErrProgressNotFound) {
		return nil, err
	}

	legacy, ok := mediaType.LegacyEquivalent()
	if !ok {
		return nil, err
	}
	return s.store.GetProgress(ctx, userID, legacy, mediaID)
}

// dispatch fires recalculation only where a position change feeds an
// aggregate: the anime and series categories sum current episodes. Anime
// entries feed two aggregates and so recalculate everything. The remaining
// categories count completed list items, which position changes never touch.
func (s *ProgressService) dispatch(userID string, mediaType domain.MediaType) {
	switch mediaType {
	case domain.MediaTypeAnime:
		s.dispatcher.DispatchAll(userID)
	case domain.MediaTypeTV:
		s.dispatcher.DispatchCategory(userID, domain.CategorySeries)
	}
}
