package model

import "fmt"

// PullRequestRef identifies a pull request. A zero Number means the
// triggering event carried no pull request.
type PullRequestRef struct {
	Repo   RepoRef
	Number int
}

// HasNumber reports whether the reference points at an actual pull request.
func (r PullRequestRef) HasNumber() bool {
	return r.Number > 0
}

// String returns the "owner/name#number" form.
func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", r.Repo.FullName(), r.Number)
}

// CommitInfo is the head commit and changed file list of a pull request,
// resolved once per invocation.
type CommitInfo struct {
	HeadSHA string
	Files   []string // Ordered; at most one page (100) of paths.
}
