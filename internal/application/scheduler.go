package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
	"github.com/ericfisherdev/prcheck/internal/domain/port/driven"
)

// DefaultCompletionDelay is how long a check run stays in_progress before the
// completion update is issued.
const DefaultCompletionDelay = 5 * time.Second

// CompletionScheduler issues the single in_progress -> completed transition of
// a check run after a fixed delay. Scheduled completions run in the background;
// Wait must be called before the process exits or pending updates are lost.
type CompletionScheduler struct {
	checks driven.CheckRunAPI
	delay  time.Duration
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewCompletionScheduler creates a CompletionScheduler that waits delay before
// each update.
func NewCompletionScheduler(checks driven.CheckRunAPI, delay time.Duration) *CompletionScheduler {
	return &CompletionScheduler{checks: checks, delay: delay, now: time.Now}
}

// Schedule arms a one-shot completion for checkRunID and returns immediately.
// Cancelling ctx before the delay elapses drops the update. A failed update is
// logged and not retried; callers cannot observe it.
func (s *CompletionScheduler) Schedule(ctx context.Context, repo model.RepoRef, checkRunID int64, completion model.Completion) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			slog.Warn("check run completion cancelled before delay elapsed",
				"repo", repo.FullName(),
				"check_run_id", checkRunID,
				"error", ctx.Err(),
			)
			return
		case <-timer.C:
		}

		completion.CompletedAt = s.now().UTC()
		if err := s.checks.CompleteCheckRun(ctx, repo, checkRunID, completion); err != nil {
			slog.Error("check run completion failed",
				"repo", repo.FullName(),
				"check_run_id", checkRunID,
				"error", err,
			)
			return
		}

		slog.Info("check run completed",
			"repo", repo.FullName(),
			"check_run_id", checkRunID,
			"conclusion", completion.Conclusion,
		)
	}()
}

// Wait blocks until every scheduled completion has finished or been cancelled.
func (s *CompletionScheduler) Wait() {
	s.wg.Wait()
}
