package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medialogapp/medialog-server/internal/domain"
)

// RecalcJob is one queued achievement recalculation request.
type RecalcJob struct {
	JobID    string
	UserID   string
	Category domain.Category
	All      bool
}

// Dispatcher accepts recalculation work without blocking the caller.
// Mutation paths fire these and move on; a dropped job is self-healing
// because the next recalculation recomputes from live aggregates anyway.
type Dispatcher interface {
	DispatchCategory(userID string, category domain.Category)
	DispatchAll(userID string)
}

// Recalculator runs achievement recalculations on a bounded worker pool.
type Recalculator struct {
	achievements *AchievementService
	logger       *slog.Logger

	jobs    chan RecalcJob
	wg      sync.WaitGroup
	timeout time.Duration

	stopOnce sync.Once
}

// NewRecalculator creates a recalculator with the given queue depth and
// worker count and starts its workers.
func NewRecalculator(achievements *AchievementService, logger *slog.Logger, queueSize, workers int, jobTimeout time.Duration) *Recalculator {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 2
	}
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}

	r := &Recalculator{
		achievements: achievements,
		logger:       logger,
		jobs:         make(chan RecalcJob, queueSize),
		timeout:      jobTimeout,
	}

	for i := range workers {
		r.wg.Add(1)
		go r.worker(i)
	}
	return r
}

// DispatchCategory queues a single-category recalculation. Never blocks;
// when the queue is full the job is dropped with a warning.
func (r *Recalculator) DispatchCategory(userID string, category domain.Category) {
	r.dispatch(RecalcJob{
		JobID:    uuid.NewString(),
		UserID:   userID,
		Category: category,
	})
}

// DispatchAll queues a recalculation of every category for the user.
func (r *Recalculator) DispatchAll(userID string) {
	r.dispatch(RecalcJob{
		JobID:  uuid.NewString(),
		UserID: userID,
		All:    true,
	})
}

func (r *Recalculator) dispatch(job RecalcJob) {
	select {
	case r.jobs <- job:
		r.logger.Debug("recalc job queued",
			"job_id", job.JobID,
			"user_id", job.UserID,
			"category", job.Category,
			"all", job.All,
		)
	default:
		r.logger.Warn("recalc queue full, dropping job",
			"job_id", job.JobID,
			"user_id", job.UserID,
			"category", job.Category,
			"all", job.All,
		)
	}
}

func (r *Recalculator) worker(n int) {
	defer r.wg.Done()

	for job := range r.jobs {
		r.run(job, n)
	}
}

func (r *Recalculator) run(job RecalcJob, worker int) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	var err error
	if job.All {
		err = r.achievements.RecalculateAll(ctx, job.UserID)
	} else {
		_, err = r.achievements.RecalculateCategory(ctx, job.UserID, job.Category)
	}

	if err != nil {
		r.logger.Error("recalc job failed",
			"job_id", job.JobID,
			"user_id", job.UserID,
			"category", job.Category,
			"all", job.All,
			"worker", worker,
			"error", err,
		)
		return
	}

	r.logger.Debug("recalc job done",
		"job_id", job.JobID,
		"user_id", job.UserID,
		"duration", time.Since(start),
		"worker", worker,
	)
}

// Stop closes the queue and waits for in-flight jobs to finish.
// Queued jobs are drained before workers exit.
func (r *Recalculator) Stop() {
	r.stopOnce.Do(func() {
		close(r.jobs)
	})
	r.wg.Wait()
}
