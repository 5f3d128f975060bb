package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/service"
)

func TestRecalculatorProcessesQueuedJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	addWatching(t, env, 1, domain.MediaTypeAnime)
	_, err := env.progress.UpdateEpisodes(ctx, "u1", domain.MediaTypeAnime, 1, service.UpdateEpisodesRequest{
		CurrentEpisode: 12,
		TotalEpisodes:  intPtr(24),
	})
	require.NoError(t, err)

	r := service.NewRecalculator(env.achievements, discardLogger(), 8, 2, 5*time.Second)
	r.DispatchCategory("u1", domain.CategoryAnime)
	r.DispatchAll("u1")
	r.Stop() // drains the queue before returning

	bronze, err := env.store.GetAchievement(ctx, "u1", domain.CategoryAnime, domain.TierBronze)
	require.NoError(t, err)
	assert.True(t, bronze.Completed)
	assert.Equal(t, 12, bronze.Progress)
}

func TestRecalculatorDropsWhenQueueFull(t *testing.T) {
	env := newTestEnv(t)

	// One worker, depth one, and jobs for a user with nothing to compute.
	// Overfilling must not block the caller.
	r := service.NewRecalculator(env.achievements, discardLogger(), 1, 1, time.Second)

	done := make(chan struct{})
	go func() {
		for range 100 {
			r.DispatchCategory("u1", domain.CategoryAnime)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch blocked on a full queue")
	}
	r.Stop()
}

func TestRecalculatorStopIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	r := service.NewRecalculator(env.achievements, discardLogger(), 4, 1, time.Second)
	r.Stop()
	r.Stop()
}
