package store

import (
	"context"
	"encoding/json/v2"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/medialogapp/medialog-server/internal/domain"
)

// UpsertProgress writes a progress item under its composite key.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.ProgressItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txSet(txn, progressKey(p.UserID, p.MediaType, p.MediaID), p)
	})
}

// GetProgress retrieves a progress item by its (user, type, media) key.
func (s *Store) GetProgress(ctx context.Context, userID string, mediaType domain.MediaType, mediaID int64) (*domain.ProgressItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.ProgressItem
	err := s.db.View(func(txn *badger.Txn) error {
		err := txGet(txn, progressKey(userID, mediaType, mediaID), &p)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrProgressNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SumCurrentEpisodes sums CurrentEpisode across all of a user's progress
// items of one type. A single prefix scan over progress:<user>:<type>:.
func (s *Store) SumCurrentEpisodes(ctx context.Context, userID string, mediaType domain.MediaType) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sum := 0
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := progressTypePrefix(userID, mediaType)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p domain.ProgressItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			sum += p.CurrentEpisode
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// CountCompletedWithoutEpisodes counts a user's completed list items of one
// type whose paired progress has no known episode total - entries with no
// episode concept, treated as films.
func (s *Store) CountCompletedWithoutEpisodes(ctx context.Context, userID string, mediaType domain.MediaType) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(listByUserPrefix + userID + ":")

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			var li domain.ListItem
			if err := txGet(txn, listKey(id), &li); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if li.MediaType != mediaType || li.Status != domain.StatusCompleted {
				continue
			}

			var p domain.ProgressItem
			err := txGet(txn, progressKey(userID, mediaType, li.MediaID), &p)
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
				count++ // no progress record at all
			case err != nil:
				return err
			case p.TotalEpisodes == nil || *p.TotalEpisodes == 0:
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
