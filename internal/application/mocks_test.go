package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
)

// --- Mock implementations ---

type mockCommitQuerier struct {
	calls int
	fetch func(ctx context.Context, ref model.PullRequestRef) (*model.CommitInfo, error)
}

func (m *mockCommitQuerier) FetchCommitInfo(ctx context.Context, ref model.PullRequestRef) (*model.CommitInfo, error) {
	m.calls++
	return m.fetch(ctx, ref)
}

type createCall struct {
	Repo model.RepoRef
	Run  model.NewCheckRun
}

type completeCall struct {
	Repo       model.RepoRef
	CheckRunID int64
	Completion model.Completion
	At         time.Time
}

// mockCheckRunAPI records every call. Completions arrive on a background
// goroutine, so all fields are guarded by mu.
type mockCheckRunAPI struct {
	mu          sync.Mutex
	existing    []model.CheckRun
	listErr     error
	createErr   error
	completeErr error
	nextID      int64

	lists     []string
	creates   []createCall
	completes []completeCall
}

func (m *mockCheckRunAPI) ListInProgressCheckRuns(_ context.Context, _ model.RepoRef, sha string) ([]model.CheckRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists = append(m.lists, sha)
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.existing, nil
}

func (m *mockCheckRunAPI) CreateCheckRun(_ context.Context, repo model.RepoRef, run model.NewCheckRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, createCall{Repo: repo, Run: run})
	if m.createErr != nil {
		return 0, m.createErr
	}
	return m.nextID, nil
}

func (m *mockCheckRunAPI) CompleteCheckRun(_ context.Context, repo model.RepoRef, checkRunID int64, c model.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completes = append(m.completes, completeCall{Repo: repo, CheckRunID: checkRunID, Completion: c, At: time.Now()})
	return m.completeErr
}

func (m *mockCheckRunAPI) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists)
}

func (m *mockCheckRunAPI) createCalls() []createCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]createCall(nil), m.creates...)
}

func (m *mockCheckRunAPI) completeCalls() []completeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]completeCall(nil), m.completes...)
}

var testRepo = model.RepoRef{Owner: "octo", Name: "widgets"}
