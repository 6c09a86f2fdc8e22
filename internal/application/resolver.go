// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
	"github.com/ericfisherdev/prcheck/internal/domain/port/driven"
)

// CommitResolver looks up the head commit and changed files of a pull request.
type CommitResolver struct {
	commits driven.CommitQuerier
}

// NewCommitResolver creates a CommitResolver backed by the given query port.
func NewCommitResolver(commits driven.CommitQuerier) *CommitResolver {
	return &CommitResolver{commits: commits}
}

// Resolve returns the pull request's CommitInfo, or nil, nil when there is no
// pull request to report on. A ref without a number is absent and no query is
// issued for it.
func (r *CommitResolver) Resolve(ctx context.Context, ref model.PullRequestRef) (*model.CommitInfo, error) {
	if !ref.HasNumber() {
		slog.Debug("no pull request number in event context", "repo", ref.Repo.FullName())
		return nil, nil
	}

	info, err := r.commits.FetchCommitInfo(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolving head commit of %s: %w", ref, err)
	}
	if info == nil {
		slog.Debug("no pull request found", "pr", ref.String())
		return nil, nil
	}

	return info, nil
}
