package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
	"github.com/medialogapp/medialog-server/internal/service"
	"github.com/medialogapp/medialog-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubCatalog serves canned details keyed by (type, id). Misses return
// the error in err, defaulting to not-found semantics via nil details.
type stubCatalog struct {
	details map[string]*catalog.Details
	err     error
}

func catalogKey(mediaType domain.MediaType, mediaID int64) string {
	return fmt.Sprintf("%s:%d", mediaType, mediaID)
}

func (c *stubCatalog) GetDetails(_ context.Context, mediaType domain.MediaType, mediaID int64) (*catalog.Details, error) {
	if c.err != nil {
		return nil, c.err
	}
	if d, ok := c.details[catalogKey(mediaType, mediaID)]; ok {
		return d, nil
	}
	return nil, errors.NotFoundf("media %d not in catalog", mediaID)
}

// syncDispatcher runs recalculations inline so tests observe achievement
// state immediately after a mutation returns.
type syncDispatcher struct {
	achievements *service.AchievementService
}

func (d *syncDispatcher) DispatchCategory(userID string, category domain.Category) {
	_, _ = d.achievements.RecalculateCategory(context.Background(), userID, category)
}

func (d *syncDispatcher) DispatchAll(userID string) {
	_ = d.achievements.RecalculateAll(context.Background(), userID)
}

// recordingDispatcher captures dispatches without running them, for tests
// asserting which mutations owe a recalculation.
type recordingDispatcher struct {
	categories []domain.Category
	all        int
}

func (d *recordingDispatcher) DispatchCategory(_ string, category domain.Category) {
	d.categories = append(d.categories, category)
}

func (d *recordingDispatcher) DispatchAll(_ string) {
	d.all++
}

type testEnv struct {
	store        *store.Store
	catalog      *stubCatalog
	library      *service.LibraryService
	progress     *service.ProgressService
	achievements *service.AchievementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "medialog-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tmpDir)
	})

	logger := discardLogger()
	stub := &stubCatalog{details: map[string]*catalog.Details{}}
	achievements := service.NewAchievementService(s, logger)
	dispatcher := &syncDispatcher{achievements: achievements}

	return &testEnv{
		store:        s,
		catalog:      stub,
		library:      service.NewLibraryService(s, stub, dispatcher, logger),
		progress:     service.NewProgressService(s, dispatcher, logger),
		achievements: achievements,
	}
}

func intPtr(v int) *int { return &v }
