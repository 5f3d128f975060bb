package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/medialogapp/medialog-server/internal/domain"
)

// MigrateListItemType re-keys a list item to a new canonical type and moves
// the paired progress record in the same transaction, so the relationship
// invariant (list and progress share a type) holds at every commit point.
//
// Returns ErrDuplicateListItem if the destination key is already taken by a
// different record; the caller then merges instead.
func (s *Store) MigrateListItemType(ctx context.Context, id string, to domain.MediaType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var item domain.ListItem
		err := txGet(txn, listKey(id), &item)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrListItemNotFound
		}
		if err != nil {
			return err
		}
		if item.MediaType == to {
			return nil
		}

		destKey := listUserKey(item.UserID, to, item.MediaID)
		taken, err := exists(txn, destKey)
		if err != nil {
			return fmt.Errorf("check destination key: %w", err)
		}
		if taken {
			return ErrDuplicateListItem
		}

		from := item.MediaType
		if err := txn.Delete(listUserKey(item.UserID, from, item.MediaID)); err != nil {
			return fmt.Errorf("delete old unique index: %w", err)
		}

		item.MediaType = to
		item.UpdatedAt = time.Now()
		if err := txSet(txn, listKey(item.ID), &item); err != nil {
			return fmt.Errorf("rewrite list item: %w", err)
		}
		if err := txn.Set(destKey, []byte(item.ID)); err != nil {
			return fmt.Errorf("set new unique index: %w", err)
		}

		return migrateProgressInTxn(txn, item.UserID, item.MediaID, from, to)
	})
}

// MigrateProgressType re-keys a user's progress record for one media item
// from one type to another. Used on the merge path, where the list item
// re-key is handled separately.
func (s *Store) MigrateProgressType(ctx context.Context, userID string, mediaID int64, from, to domain.MediaType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return migrateProgressInTxn(txn, userID, mediaID, from, to)
	})
}

// migrateProgressInTxn moves progress:<user>:<from>:<id> to the destination
// type key. If a record already exists at the destination, the two merge
// field-wise by maximum - counts from either typing of the item are real.
func migrateProgressInTxn(txn *badger.Txn, userID string, mediaID int64, from, to domain.MediaType) error {
	var stale domain.ProgressItem
	err := txGet(txn, progressKey(userID, from, mediaID), &stale)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil // nothing to move
	}
	if err != nil {
		return err
	}

	destKey := progressKey(userID, to, mediaID)
	var dest domain.ProgressItem
	err = txGet(txn, destKey, &dest)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		stale.MediaType = to
		stale.UpdatedAt = time.Now()
		dest = stale
	case err != nil:
		return err
	default:
		mergeProgressMax(&dest, &stale)
	}

	if err := txn.Delete(progressKey(userID, from, mediaID)); err != nil {
		return fmt.Errorf("delete stale progress: %w", err)
	}
	if err := txSet(txn, destKey, &dest); err != nil {
		return fmt.Errorf("write migrated progress: %w", err)
	}
	return nil
}

// mergeProgressMax folds src counters into dst, keeping the maximum of each.
func mergeProgressMax(dst, src *domain.ProgressItem) {
	if src.CurrentEpisode > dst.CurrentEpisode {
		dst.CurrentEpisode = src.CurrentEpisode
	}
	if src.CurrentChapter > dst.CurrentChapter {
		dst.CurrentChapter = src.CurrentChapter
	}
	if src.WatchedMinutes > dst.WatchedMinutes {
		dst.WatchedMinutes = src.WatchedMinutes
	}
	if src.TotalEpisodes != nil && (dst.TotalEpisodes == nil || *src.TotalEpisodes > *dst.TotalEpisodes) {
		dst.TotalEpisodes = src.TotalEpisodes
	}
	if src.TotalChapters != nil && (dst.TotalChapters == nil || *src.TotalChapters > *dst.TotalChapters) {
		dst.TotalChapters = src.TotalChapters
	}
	if src.CreatedAt.Before(dst.CreatedAt) && !src.CreatedAt.IsZero() {
		dst.CreatedAt = src.CreatedAt
	}
	dst.UpdatedAt = time.Now()
}
