// Package store persists list, progress, and achievement records in Badger.
//
// Records are mutated through upsert-by-unique-key operations; Badger's
// single-transaction durability is the only ordering primitive the engine
// relies on. Key layout:
//
//	list:<id>                                   primary list item
//	list:idx:userkey:<user>:<type>:<mediaID>    unique (user, media, type) -> id
//	list:idx:user:<user>:<id>                   listing index -> id
//	progress:<user>:<type>:<mediaID>            primary progress item
//	ach:<user>:<category>:<tier>                primary achievement record
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/medialogapp/medialog-server/internal/domain"
)

const (
	listPrefix        = "list:"
	listUserKeyPrefix = "list:idx:userkey:"
	listByUserPrefix  = "list:idx:user:"
	progressPrefix    = "progress:"
	achievementPrefix = "ach:"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("database opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database connection")
	}
	return s.db.Close()
}

// Key builders. Media IDs are rendered base-10; the colon separators are
// safe because user IDs are nanoids and types/categories are fixed enums.

func listKey(id string) []byte {
	return []byte(listPrefix + id)
}

func listUserKey(userID string, mediaType domain.MediaType, mediaID int64) []byte {
	return []byte(listUserKeyPrefix + userID + ":" + string(mediaType) + ":" + strconv.FormatInt(mediaID, 10))
}

func listByUserKey(userID, id string) []byte {
	return []byte(listByUserPrefix + userID + ":" + id)
}

func progressKey(userID string, mediaType domain.MediaType, mediaID int64) []byte {
	return []byte(progressPrefix + userID + ":" + string(mediaType) + ":" + strconv.FormatInt(mediaID, 10))
}

func progressTypePrefix(userID string, mediaType domain.MediaType) []byte {
	return []byte(progressPrefix + userID + ":" + string(mediaType) + ":")
}

func achievementKey(userID string, category domain.Category, tier domain.Tier) []byte {
	return []byte(achievementPrefix + userID + ":" + string(category) + ":" + string(tier))
}

func achievementUserPrefix(userID string) []byte {
	return []byte(achievementPrefix + userID + ":")
}

// txGet reads and unmarshals a value inside a transaction.
// Returns badger.ErrKeyNotFound untouched so callers can map it.
func txGet(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// txSet marshals and writes a value inside a transaction.
func txSet(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return txn.Set(key, data)
}

// exists reports whether a key is present inside a transaction.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
