package driven

import (
	"context"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
)

// CommitQuerier defines the driven port for resolving a pull request's head
// commit and changed files. The data typically comes from the GitHub GraphQL API.
type CommitQuerier interface {
	// FetchCommitInfo returns the head commit and the first page of changed
	// file paths. Returns nil, nil if the pull request does not exist.
	FetchCommitInfo(ctx context.Context, ref model.PullRequestRef) (*model.CommitInfo, error)
}
