// Package action adapts the GitHub Actions runner environment: it decodes the
// triggering event, renders logs as workflow commands and signals failure.
package action

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	gh "github.com/google/go-github/v82/github"
)

// Detect reports whether the process runs inside a GitHub Actions job.
func Detect() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// PullRequestNumber returns the pull request number carried by the event
// payload at eventPath, or 0 when the event is not about a pull request.
// A missing payload file is treated as an empty event, as the runner does.
func PullRequestNumber(eventName, eventPath string) (int, error) {
	if eventPath == "" {
		return 0, nil
	}

	payload, err := os.ReadFile(eventPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("event payload file not found", "path", eventPath)
			return 0, nil
		}
		return 0, fmt.Errorf("reading event payload %s: %w", eventPath, err)
	}

	return pullRequestNumberFromPayload(eventName, payload)
}

func pullRequestNumberFromPayload(eventName string, payload []byte) (int, error) {
	webhookType := eventName
	// pull_request_target carries the pull_request payload shape.
	if webhookType == "pull_request_target" {
		webhookType = "pull_request"
	}

	switch webhookType {
	case "pull_request", "pull_request_review", "pull_request_review_comment", "issue_comment":
	default:
		slog.Debug("event does not reference a pull request", "event", eventName)
		return 0, nil
	}

	event, err := gh.ParseWebHook(webhookType, payload)
	if err != nil {
		return 0, fmt.Errorf("decoding %s event payload: %w", eventName, err)
	}

	switch e := event.(type) {
	case *gh.PullRequestEvent:
		if n := e.GetPullRequest().GetNumber(); n != 0 {
			return n, nil
		}
		return e.GetNumber(), nil
	case *gh.PullRequestReviewEvent:
		return e.GetPullRequest().GetNumber(), nil
	case *gh.PullRequestReviewCommentEvent:
		return e.GetPullRequest().GetNumber(), nil
	case *gh.IssueCommentEvent:
		issue := e.GetIssue()
		if issue == nil || !issue.IsPullRequest() {
			return 0, nil
		}
		return issue.GetNumber(), nil
	default:
		return 0, nil
	}
}
