package driven

import (
	"context"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
)

// CheckRunAPI defines the driven port for the GitHub Checks API.
type CheckRunAPI interface {
	// ListInProgressCheckRuns returns every check run on sha whose status is in_progress.
	ListInProgressCheckRuns(ctx context.Context, repo model.RepoRef, sha string) ([]model.CheckRun, error)

	// CreateCheckRun creates a check run in the in_progress state and returns its ID.
	CreateCheckRun(ctx context.Context, repo model.RepoRef, run model.NewCheckRun) (int64, error)

	// CompleteCheckRun transitions a check run to completed with the given
	// conclusion and output.
	CompleteCheckRun(ctx context.Context, repo model.RepoRef, checkRunID int64, c model.Completion) error
}
