package store

import "github.com/medialogapp/medialog-server/internal/errors"

// Sentinel errors for store operations. All wrap the domain error codes so
// callers can match either the specific sentinel or the general code.
var (
	ErrListItemNotFound    = errors.NotFound("list item not found")
	ErrProgressNotFound    = errors.NotFound("progress item not found")
	ErrAchievementNotFound = errors.NotFound("achievement record not found")

	// ErrDuplicateListItem signals a unique-key collision on
	// (user, media, type). The orchestrator recovers via merge.
	ErrDuplicateListItem = errors.Duplicate("list item already exists for this media and type")
)
