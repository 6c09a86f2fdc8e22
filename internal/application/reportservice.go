package application

import (
	"context"
	"strings"
	"time"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
	"github.com/ericfisherdev/prcheck/internal/domain/port/driven"
)

// emptySummary is the check run summary used when the pull request changes no files.
const emptySummary = "No changed files."

// Invocation is everything one run needs from the triggering event and inputs.
type Invocation struct {
	PullRequest model.PullRequestRef
	CheckName   string
}

// ReportService runs one invocation end to end: resolve the head commit,
// reconcile the check run, then schedule its completion.
type ReportService struct {
	resolver   *CommitResolver
	reconciler *CheckReconciler
	scheduler  *CompletionScheduler
}

// NewReportService creates a ReportService. delay is the fixed wait before
// the check run is completed; production callers pass DefaultCompletionDelay.
func NewReportService(commits driven.CommitQuerier, checks driven.CheckRunAPI, delay time.Duration) *ReportService {
	return &ReportService{
		resolver:   NewCommitResolver(commits),
		reconciler: NewCheckReconciler(checks),
		scheduler:  NewCompletionScheduler(checks, delay),
	}
}

// Report resolves the pull request and arms the completion of its check run.
// It returns nil without touching check runs when there is no pull request.
// Any error before the completion is scheduled is returned unchanged in
// meaning; the completion itself never affects the result.
func (s *ReportService) Report(ctx context.Context, inv Invocation) error {
	info, err := s.resolver.Resolve(ctx, inv.PullRequest)
	if err != nil {
		return err
	}
	if info == nil {
		return nil
	}

	repo := inv.PullRequest.Repo
	checkRunID, err := s.reconciler.Reconcile(ctx, repo, info.HeadSHA, inv.CheckName)
	if err != nil {
		return err
	}

	s.scheduler.Schedule(ctx, repo, checkRunID, model.Completion{
		Name:       inv.CheckName,
		Conclusion: model.ConclusionSuccess,
		Title:      inv.CheckName,
		Summary:    completionSummary(info.Files),
	})
	return nil
}

// Wait blocks until the scheduled completion has been issued.
func (s *ReportService) Wait() {
	s.scheduler.Wait()
}

// completionSummary lists the changed files, comma separated.
func completionSummary(files []string) string {
	if len(files) == 0 {
		return emptySummary
	}
	return strings.Join(files, ", ")
}
