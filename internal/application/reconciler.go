package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
	"github.com/ericfisherdev/prcheck/internal/domain/port/driven"
)

var (
	// ErrEmptyCheckName is returned when reconciling without a check name.
	ErrEmptyCheckName = errors.New("check name must not be empty")
	// ErrEmptyCommitSHA is returned when reconciling without a commit.
	ErrEmptyCommitSHA = errors.New("commit SHA must not be empty")
)

// CheckReconciler finds or creates the in_progress check run for a
// (commit, name) pair.
//
// The lookup and the create are separate API calls, so two invocations racing
// on the same pair can each miss the other's run and both create one. Nothing
// here serializes across invocations.
type CheckReconciler struct {
	checks driven.CheckRunAPI
	now    func() time.Time
}

// NewCheckReconciler creates a CheckReconciler backed by the given Checks API port.
func NewCheckReconciler(checks driven.CheckRunAPI) *CheckReconciler {
	return &CheckReconciler{checks: checks, now: time.Now}
}

// Reconcile returns the ID of the in_progress check run named checkName on sha,
// creating one if none exists. The name match is exact and case-sensitive.
func (r *CheckReconciler) Reconcile(ctx context.Context, repo model.RepoRef, sha, checkName string) (int64, error) {
	if checkName == "" {
		return 0, ErrEmptyCheckName
	}
	if sha == "" {
		return 0, ErrEmptyCommitSHA
	}

	runs, err := r.checks.ListInProgressCheckRuns(ctx, repo, sha)
	if err != nil {
		return 0, fmt.Errorf("searching check runs: %w", err)
	}

	if existing, ok := findByName(runs, checkName); ok {
		slog.Info("reusing in-progress check run",
			"repo", repo.FullName(),
			"sha", sha,
			"name", checkName,
			"check_run_id", existing.ID,
		)
		return existing.ID, nil
	}

	id, err := r.checks.CreateCheckRun(ctx, repo, model.NewCheckRun{
		Name:      checkName,
		HeadSHA:   sha,
		StartedAt: r.now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("creating check run: %w", err)
	}

	slog.Info("created check run",
		"repo", repo.FullName(),
		"sha", sha,
		"name", checkName,
		"check_run_id", id,
	)
	return id, nil
}

// findByName returns the first run whose name equals name.
func findByName(runs []model.CheckRun, name string) (model.CheckRun, bool) {
	for _, run := range runs {
		if run.Name == name {
			return run, true
		}
	}
	return model.CheckRun{}, false
}
