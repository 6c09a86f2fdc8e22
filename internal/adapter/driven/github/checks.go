package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
)

// ListInProgressCheckRuns retrieves all in_progress check runs for the given commit.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) ListInProgressCheckRuns(ctx context.Context, repo model.RepoRef, sha string) ([]model.CheckRun, error) {
	opts := &gh.ListCheckRunsOptions{
		Status:      gh.Ptr(string(model.CheckStatusInProgress)),
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allRuns []model.CheckRun

	for {
		result, resp, err := c.listCheckRunsPage(ctx, repo, sha, opts)
		if err != nil {
			return nil, fmt.Errorf("listing check runs for %s@%s (page %d): %w", repo.FullName(), sha, opts.Page, err)
		}

		logRateLimit(resp, repo.FullName()+"/check-runs", opts.Page, len(result.CheckRuns))

		for _, cr := range result.CheckRuns {
			allRuns = append(allRuns, mapCheckRun(cr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRuns, nil
}

func (c *Client) listCheckRunsPage(ctx context.Context, repo model.RepoRef, sha string, opts *gh.ListCheckRunsOptions) (*gh.ListCheckRunsResults, *gh.Response, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	return c.gh.Checks.ListCheckRunsForRef(ctx, repo.Owner, repo.Name, sha, opts)
}

// CreateCheckRun creates a new check run in the in_progress state and returns its ID.
func (c *Client) CreateCheckRun(ctx context.Context, repo model.RepoRef, run model.NewCheckRun) (int64, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	opts := gh.CreateCheckRunOptions{
		Name:      run.Name,
		HeadSHA:   run.HeadSHA,
		Status:    gh.Ptr(string(model.CheckStatusInProgress)),
		StartedAt: &gh.Timestamp{Time: run.StartedAt.UTC()},
	}

	created, resp, err := c.gh.Checks.CreateCheckRun(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return 0, wrapChecksError(err, fmt.Sprintf("creating check run %q for %s@%s", run.Name, repo.FullName(), run.HeadSHA))
	}

	logRateLimit(resp, repo.FullName()+"/create-check-run", 0, 1)
	return created.GetID(), nil
}

// CompleteCheckRun marks a check run completed with the given conclusion and output.
func (c *Client) CompleteCheckRun(ctx context.Context, repo model.RepoRef, checkRunID int64, completion model.Completion) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	opts := gh.UpdateCheckRunOptions{
		Name:        completion.Name,
		Status:      gh.Ptr(string(model.CheckStatusCompleted)),
		Conclusion:  gh.Ptr(string(completion.Conclusion)),
		CompletedAt: &gh.Timestamp{Time: completion.CompletedAt.UTC()},
		Output: &gh.CheckRunOutput{
			Title:   gh.Ptr(completion.Title),
			Summary: gh.Ptr(completion.Summary),
		},
	}

	_, resp, err := c.gh.Checks.UpdateCheckRun(ctx, repo.Owner, repo.Name, checkRunID, opts)
	if err != nil {
		return wrapChecksError(err, fmt.Sprintf("completing check run %d on %s", checkRunID, repo.FullName()))
	}

	logRateLimit(resp, repo.FullName()+"/update-check-run", 0, 1)
	return nil
}

// wrapChecksError adds a permission hint to 403 responses, which is the usual
// failure when the workflow token lacks the checks: write scope.
func wrapChecksError(err error, op string) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: token needs checks: write permission: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
