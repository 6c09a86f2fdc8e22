package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
)

// filesPageSize caps the changed-file list; larger pull requests are truncated.
const filesPageSize = 100

// commitInfoQuery fetches the last commit of the pull request's commit list and
// the first page of changed files in a single round trip.
const commitInfoQuery = `query($owner: String!, $name: String!, $prNumber: Int!) {
	repository(owner: $owner, name: $name) {
		pullRequest(number: $prNumber) {
			files(first: 100) {
				pageInfo {
					hasNextPage
				}
				nodes {
					path
				}
			}
			commits(last: 1) {
				totalCount
				nodes {
					commit {
						oid
					}
				}
			}
		}
	}
}`

// errorTypeNotFound is the GraphQL error type GitHub reports for an unknown
// repository or pull request number.
const errorTypeNotFound = "NOT_FOUND"

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// commitInfoResponse represents the expected shape of a GitHub GraphQL response
// for the commit info query. Pointers distinguish a null repository or pull
// request from an empty one.
type commitInfoResponse struct {
	Data struct {
		Repository *struct {
			PullRequest *struct {
				Files struct {
					PageInfo struct {
						HasNextPage bool `json:"hasNextPage"`
					} `json:"pageInfo"`
					Nodes []struct {
						Path string `json:"path"`
					} `json:"nodes"`
				} `json:"files"`
				Commits struct {
					TotalCount int `json:"totalCount"`
					Nodes      []struct {
						Commit struct {
							OID string `json:"oid"`
						} `json:"commit"`
					} `json:"nodes"`
				} `json:"commits"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// FetchCommitInfo queries the GitHub GraphQL API for the pull request's head
// commit and changed file paths. Returns nil, nil when the repository or pull
// request cannot be resolved.
//
// The head commit is the last entry of a one-element page of the commit list,
// not a timestamp lookup. Files beyond the first 100 are dropped with a warning.
func (c *Client) FetchCommitInfo(ctx context.Context, ref model.PullRequestRef) (*model.CommitInfo, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	reqBody := graphqlRequest{
		Query: commitInfoQuery,
		Variables: map[string]any{
			"owner":    ref.Repo.Owner,
			"name":     ref.Repo.Name,
			"prNumber": ref.Number,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling commit info query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating commit info request: %w", err)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("bearer %s", c.token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.graphqlHTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("commit info query for %s: %w", ref, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("commit info query for %s: HTTP %d", ref, resp.StatusCode)
	}

	var gqlResp commitInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("decoding commit info response for %s: %w", ref, err)
	}

	if len(gqlResp.Errors) > 0 {
		if !allNotFound(gqlResp.Errors) {
			return nil, fmt.Errorf("commit info query for %s: %s", ref, joinMessages(gqlResp.Errors))
		}
		slog.Debug("graphql: pull request not found", "pr", ref.String(), "error", gqlResp.Errors[0].Message)
		return nil, nil
	}

	if gqlResp.Data.Repository == nil || gqlResp.Data.Repository.PullRequest == nil {
		return nil, nil
	}
	pr := gqlResp.Data.Repository.PullRequest

	commits := pr.Commits.Nodes
	if len(commits) == 0 || commits[len(commits)-1].Commit.OID == "" {
		return nil, fmt.Errorf("commit info query for %s: %w", ref, ErrNoCommits)
	}
	headSHA := commits[len(commits)-1].Commit.OID

	if pr.Files.PageInfo.HasNextPage {
		slog.Warn("graphql: changed files exceed page size, list truncated",
			"pr", ref.String(),
			"limit", filesPageSize,
		)
	}

	files := make([]string, 0, len(pr.Files.Nodes))
	for _, f := range pr.Files.Nodes {
		files = append(files, f.Path)
	}

	slog.Debug("graphql: commit info resolved",
		"pr", ref.String(),
		"head_sha", headSHA,
		"commits", pr.Commits.TotalCount,
		"files", len(files),
	)

	return &model.CommitInfo{HeadSHA: headSHA, Files: files}, nil
}

// allNotFound reports whether every GraphQL error is a NOT_FOUND resolution failure.
func allNotFound(errs []graphqlError) bool {
	for _, e := range errs {
		if e.Type != errorTypeNotFound {
			return false
		}
	}
	return true
}

func joinMessages(errs []graphqlError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
