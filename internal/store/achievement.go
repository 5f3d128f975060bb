package store

import (
	"context"
	"encoding/json/v2"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/medialogapp/medialog-server/internal/domain"
)

// UpsertAchievement writes an achievement record under its composite key.
func (s *Store) UpsertAchievement(ctx context.Context, rec *domain.AchievementRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txSet(txn, achievementKey(rec.UserID, rec.Category, rec.Tier), rec)
	})
}

// GetAchievement retrieves one tier record.
func (s *Store) GetAchievement(ctx context.Context, userID string, category domain.Category, tier domain.Tier) (*domain.AchievementRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec domain.AchievementRecord
	err := s.db.View(func(txn *badger.Txn) error {
		err := txGet(txn, achievementKey(userID, category, tier), &rec)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrAchievementNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAchievementsForUser retrieves every achievement record a user has.
// Tiers never touched by a recalculation are simply absent.
func (s *Store) GetAchievementsForUser(ctx context.Context, userID string) ([]*domain.AchievementRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var recs []*domain.AchievementRecord
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := achievementUserPrefix(userID)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec domain.AchievementRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			recs = append(recs, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}
