package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/medialogapp/medialog-server/internal/domain"
)

// UpsertListItem writes a list item and its indexes atomically.
// Creating a second item under the same (user, media, type) key returns
// ErrDuplicateListItem; updating the item that owns the key is fine.
func (s *Store) UpsertListItem(ctx context.Context, item *domain.ListItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		uniqueKey := listUserKey(item.UserID, item.MediaType, item.MediaID)

		existing, err := txn.Get(uniqueKey)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check unique key: %w", err)
		}
		if err == nil {
			var ownerID string
			if verr := existing.Value(func(val []byte) error {
				ownerID = string(val)
				return nil
			}); verr != nil {
				return verr
			}
			if ownerID != item.ID {
				return ErrDuplicateListItem
			}
		}

		if err := txSet(txn, listKey(item.ID), item); err != nil {
			return fmt.Errorf("set list item: %w", err)
		}
		if err := txn.Set(uniqueKey, []byte(item.ID)); err != nil {
			return fmt.Errorf("set unique index: %w", err)
		}
		if err := txn.Set(listByUserKey(item.UserID, item.ID), []byte(item.ID)); err != nil {
			return fmt.Errorf("set user index: %w", err)
		}
		return nil
	})
}

// GetListItem retrieves a list item by ID.
func (s *Store) GetListItem(ctx context.Context, id string) (*domain.ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var item domain.ListItem
	err := s.db.View(func(txn *badger.Txn) error {
		err := txGet(txn, listKey(id), &item)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrListItemNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetListItemByKey retrieves a list item by its (user, media, type) unique key.
func (s *Store) GetListItemByKey(ctx context.Context, userID string, mediaType domain.MediaType, mediaID int64) (*domain.ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var item domain.ListItem
	err := s.db.View(func(txn *badger.Txn) error {
		idx, err := txn.Get(listUserKey(userID, mediaType, mediaID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrListItemNotFound
		}
		if err != nil {
			return err
		}

		var id string
		if err := idx.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		err = txGet(txn, listKey(id), &item)
		if errors.Is(err, badger.ErrKeyNotFound) {
			// Dangling index; treat as absent.
			return ErrListItemNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteListItem removes a list item and its indexes.
// Idempotent - deleting a missing item is not an error.
func (s *Store) DeleteListItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var item domain.ListItem
		err := txGet(txn, listKey(id), &item)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := txn.Delete(listUserKey(item.UserID, item.MediaType, item.MediaID)); err != nil {
			return fmt.Errorf("delete unique index: %w", err)
		}
		if err := txn.Delete(listByUserKey(item.UserID, item.ID)); err != nil {
			return fmt.Errorf("delete user index: %w", err)
		}
		if err := txn.Delete(listKey(id)); err != nil {
			return fmt.Errorf("delete list item: %w", err)
		}
		return nil
	})
}

// GetListItemsForUser retrieves all list items for a user.
func (s *Store) GetListItemsForUser(ctx context.Context, userID string) ([]*domain.ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []*domain.ListItem
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

			var item domain.ListItem
			if err := txGet(txn, listKey(id), &item); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue // dangling index
				}
				return err
			}
			items = append(items, &item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountListItems counts a user's list items matching the given status and
// any of the given types. A single prefix scan over the user's own items;
// never touches other users' records.
func (s *Store) CountListItems(ctx context.Context, userID string, status domain.ListStatus, types ...domain.MediaType) (int, error) {
	count := 0
	err := s.forEachListItem(ctx, userID, func(item *domain.ListItem) error {
		if item.Status == status && slices.Contains(types, item.MediaType) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// forEachListItem streams a user's list items through fn.
func (s *Store) forEachListItem(ctx context.Context, userID string, fn func(*domain.ListItem) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(txn *badger.Txn) error {
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

			item, err := txn.Get(listKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var li domain.ListItem
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &li)
			}); err != nil {
				return err
			}
			if err := fn(&li); err != nil {
				return err
			}
		}
		return nil
	})
}
