package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
	"github.com/medialogapp/medialog-server/internal/id"
	"github.com/medialogapp/medialog-server/internal/store"
)

// AddToListRequest is the payload for adding or updating a list entry.
type AddToListRequest struct {
	MediaID   int64             `json:"media_id" validate:"required,gt=0"`
	MediaType domain.MediaType  `json:"media_type" validate:"required"`
	Status    domain.ListStatus `json:"status" validate:"required"`
	Rating    *int              `json:"rating,omitempty" validate:"omitempty,gte=1,lte=10"`
	Notes     string            `json:"notes,omitempty"`
}

// UpdateListItemRequest is the payload for mutating an existing entry.
// Nil fields are left untouched.
type UpdateListItemRequest struct {
	Status *domain.ListStatus `json:"status,omitempty"`
	Rating *int               `json:"rating,omitempty" validate:"omitempty,gte=1,lte=10"`
	Notes  *string            `json:"notes,omitempty"`
}

// LibraryService is the reconciliation orchestrator. Every list mutation
// runs through it: it classifies the item against catalog signals, migrates
// or merges records typed under a stale classification, keeps the paired
// progress record in step, and fires achievement recalculation.
type LibraryService struct {
	store      *store.Store
	catalog    catalog.Provider
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(store *store.Store, provider catalog.Provider, dispatcher Dispatcher, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:      store,
		catalog:    provider,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// AddToList adds a media item to the user's list, or updates the existing
// entry for the same media. The requested type is advisory: catalog signals
// decide the canonical type, and an existing entry stored under the requested
// type or its legacy equivalent is found and migrated rather than duplicated.
func (s *LibraryService) AddToList(ctx context.Context, userID string, req AddToListRequest) (*domain.ListItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if !req.MediaType.Valid() {
		return nil, errors.Validationf("unknown media type %q", req.MediaType)
	}
	if !req.Status.Valid() {
		return nil, errors.Validationf("unknown status %q", req.Status)
	}

	existing, err := s.findExisting(ctx, userID, req.MediaType, req.MediaID)
	if err != nil {
		return nil, err
	}

	details := s.fetchDetails(ctx, req.MediaType, req.MediaID)

	// Classification signals: live catalog data wins, then whatever the
	// stored record cached. With no signals at all the raw type stands.
	var signals domain.RawMediaSignals
	switch {
	case details != nil:
		signals = details.Signals()
	case existing != nil:
		signals = existing.Signals()
	}
	canonical := domain.Classify(req.MediaType, signals)

	item, typeChanged, err := s.reconcile(ctx, userID, req, existing, canonical, details)
	if err != nil {
		return nil, err
	}

	if err := s.syncProgress(ctx, item, details); err != nil {
		return nil, err
	}

	s.dispatchFor(userID, item.MediaType, typeChanged)

	s.logger.Info("list item reconciled",
		"user_id", userID,
		"media_id", req.MediaID,
		"requested_type", req.MediaType,
		"canonical_type", item.MediaType,
		"migrated", typeChanged,
	)
	return item, nil
}

// findExisting probes the requested type's key, then the legacy-equivalent
// type's key, for a record of the same media.
func (s *LibraryService) findExisting(ctx context.Context, userID string, mediaType domain.MediaType, mediaID int64) (*domain.ListItem, error) {
	item, err := s.store.GetListItemByKey(ctx, userID, mediaType, mediaID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, store.ErrListItemNotFound) {
		return nil, err
	}

	legacy, ok := mediaType.LegacyEquivalent()
	if !ok {
		return nil, nil
	}
	item, err = s.store.GetListItemByKey(ctx, userID, legacy, mediaID)
	if errors.Is(err, store.ErrListItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// fetchDetails asks the catalog for metadata. Best effort: an unknown item
// or a down upstream degrades to nil rather than failing the mutation.
func (s *LibraryService) fetchDetails(ctx context.Context, mediaType domain.MediaType, mediaID int64) *catalog.Details {
	details, err := s.catalog.GetDetails(ctx, mediaType, mediaID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) || errors.Is(err, errors.ErrUpstream) {
			s.logger.Warn("catalog lookup degraded, proceeding without metadata",
				"media_type", mediaType,
				"media_id", mediaID,
				"error", err,
			)
			return nil
		}
		s.logger.Warn("catalog lookup failed, proceeding without metadata",
			"media_type", mediaType,
			"media_id", mediaID,
			"error", err,
		)
		return nil
	}
	return details
}

// reconcile writes the list entry under its canonical type, migrating or
// merging an existing entry stored under a stale type. Reports whether the
// stored type changed.
func (s *LibraryService) reconcile(ctx context.Context, userID string, req AddToListRequest, existing *domain.ListItem, canonical domain.MediaType, details *catalog.Details) (*domain.ListItem, bool, error) {
	now := time.Now()

	if existing == nil {
		itemID, err := id.Generate("li")
		if err != nil {
			return nil, false, err
		}
		item := &domain.ListItem{
			ID:        itemID,
			UserID:    userID,
			MediaID:   req.MediaID,
			MediaType: canonical,
			Status:    req.Status,
			Rating:    req.Rating,
			Notes:     req.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyDetails(item, details)
		if err := s.store.UpsertListItem(ctx, item); err != nil {
			return nil, false, err
		}
		return item, false, nil
	}

	stale := existing.MediaType
	if stale != canonical {
		err := s.store.MigrateListItemType(ctx, existing.ID, canonical)
		if errors.Is(err, store.ErrDuplicateListItem) {
			merged, mergeErr := s.merge(ctx, userID, req, existing, canonical, details)
			return merged, true, mergeErr
		}
		if err != nil {
			return nil, false, err
		}
		existing.MediaType = canonical
	}

	existing.Status = req.Status
	if req.Rating != nil {
		existing.Rating = req.Rating
	}
	if req.Notes != "" {
		existing.Notes = req.Notes
	}
	applyDetails(existing, details)
	existing.UpdatedAt = now

	if err := s.store.UpsertListItem(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, stale != canonical, nil
}

// merge folds a stale-typed entry into the entry already stored under the
// canonical type: the canonical record survives, takes the requested fields
// plus any display fields it lacked, absorbs the stale progress counters by
// maximum, and the stale record is deleted.
func (s *LibraryService) merge(ctx context.Context, userID string, req AddToListRequest, stale *domain.ListItem, canonical domain.MediaType, details *catalog.Details) (*domain.ListItem, error) {
	item, err := s.store.GetListItemByKey(ctx, userID, canonical, req.MediaID)
	if err != nil {
		return nil, err
	}

	item.Status = req.Status
	if req.Rating != nil {
		item.Rating = req.Rating
	}
	if req.Notes != "" {
		item.Notes = req.Notes
	}
	item.MergeFrom(stale)
	applyDetails(item, details)
	item.UpdatedAt = time.Now()

	if err := s.store.MigrateProgressType(ctx, userID, req.MediaID, stale.MediaType, canonical); err != nil {
		return nil, err
	}
	if err := s.store.DeleteListItem(ctx, stale.ID); err != nil {
		return nil, err
	}
	if err := s.store.UpsertListItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("merged duplicate list entries",
		"user_id", userID,
		"media_id", req.MediaID,
		"stale_type", stale.MediaType,
		"canonical_type", canonical,
	)
	return item, nil
}

// syncProgress lazily creates the paired progress record, seeds totals from
// catalog metadata, and advances episodes to the total on completion.
func (s *LibraryService) syncProgress(ctx context.Context, item *domain.ListItem, details *catalog.Details) error {
	progress, err := s.store.GetProgress(ctx, item.UserID, item.MediaType, item.MediaID)
	if errors.Is(err, store.ErrProgressNotFound) {
		progressID, idErr := id.Generate("pr")
		if idErr != nil {
			return idErr
		}
		progress = domain.NewProgressItem(progressID, item.UserID, item.MediaID, item.MediaType)
	} else if err != nil {
		return err
	}

	if details != nil {
		progress.SeedTotals(details.TotalEpisodes, details.TotalChapters)
	}
	if item.Status == domain.StatusCompleted && item.MediaType.Episodic() {
		progress.CompleteEpisodes()
	}
	progress.UpdatedAt = time.Now()

	return s.store.UpsertProgress(ctx, progress)
}

// applyDetails refreshes cached display fields and classification signals
// from live catalog metadata.
func applyDetails(item *domain.ListItem, details *catalog.Details) {
	if details == nil {
		return
	}
	item.Title = details.Title
	item.Overview = details.Overview
	item.PosterURL = details.PosterURL
	item.BackdropURL = details.BackdropURL
	item.OriginalLanguage = details.OriginalLanguage
	item.OriginCountry = details.OriginCountry
}

// dispatchFor fires recalculation for the categories a mutation can affect.
// A type migration or an anime mutation touches more than one aggregate, so
// those recalculate everything.
func (s *LibraryService) dispatchFor(userID string, mediaType domain.MediaType, typeChanged bool) {
	if typeChanged {
		s.dispatcher.DispatchAll(userID)
		return
	}
	category, ok := domain.CategoryForMediaType(mediaType)
	if !ok {
		s.dispatcher.DispatchAll(userID)
		return
	}
	s.dispatcher.DispatchCategory(userID, category)
}

// UpdateListItem mutates status, rating, or notes on an owned entry.
// Completion synthesizes episode progress when the total is known.
func (s *LibraryService) UpdateListItem(ctx context.Context, userID, itemID string, req UpdateListItemRequest) (*domain.ListItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, errors.Validationf("unknown status %q", *req.Status)
	}

	item, err := s.store.GetListItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, store.ErrListItemNotFound
	}

	completing := false
	if req.Status != nil {
		completing = *req.Status == domain.StatusCompleted && item.Status != domain.StatusCompleted
		item.Status = *req.Status
	}
	if req.Rating != nil {
		item.Rating = req.Rating
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	item.UpdatedAt = time.Now()

	if err := s.store.UpsertListItem(ctx, item); err != nil {
		return nil, err
	}

	if completing && item.MediaType.Episodic() {
		if err := s.syncProgress(ctx, item, nil); err != nil {
			return nil, err
		}
	}

	s.dispatchFor(userID, item.MediaType, false)
	return item, nil
}

// RemoveFromList deletes an owned entry and resets the paired progress
// position. Totals survive so a re-add does not lose them; position does not,
// keeping removed items out of the episode aggregates.
func (s *LibraryService) RemoveFromList(ctx context.Context, userID, itemID string) error {
	item, err := s.store.GetListItem(ctx, itemID)
	if errors.Is(err, store.ErrListItemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return store.ErrListItemNotFound
	}

	if err := s.store.DeleteListItem(ctx, item.ID); err != nil {
		return err
	}

	progress, err := s.store.GetProgress(ctx, userID, item.MediaType, item.MediaID)
	switch {
	case errors.Is(err, store.ErrProgressNotFound):
		// nothing to reset
	case err != nil:
		return err
	default:
		progress.ResetPosition()
		if err := s.store.UpsertProgress(ctx, progress); err != nil {
			return err
		}
	}

	s.dispatchFor(userID, item.MediaType, false)

	s.logger.Info("list item removed",
		"user_id", userID,
		"item_id", itemID,
		"media_type", item.MediaType,
	)
	return nil
}

// GetUserList returns all of a user's list entries.
func (s *LibraryService) GetUserList(ctx context.Context, userID string) ([]*domain.ListItem, error) {
	return s.store.GetListItemsForUser(ctx, userID)
}

// GetListItem returns one owned entry.
func (s *LibraryService) GetListItem(ctx context.Context, userID, itemID string) (*domain.ListItem, error) {
	item, err := s.store.GetListItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, store.ErrListItemNotFound
	}
	return item, nil
}
