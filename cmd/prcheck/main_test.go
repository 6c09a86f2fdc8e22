package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	githubadapter "github.com/ericfisherdev/prcheck/internal/adapter/driven/github"
	"github.com/ericfisherdev/prcheck/internal/config"
	"github.com/ericfisherdev/prcheck/internal/domain/model"
)

const testDelay = 20 * time.Millisecond

// fakeGitHub is an httptest-backed GitHub serving the GraphQL commit query and
// the Checks API endpoints for octo/widgets.
type fakeGitHub struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	requests []string
	existing []map[string]any
	creates  []map[string]any
	updates  []map[string]any
	updateAt time.Time
	prFound  bool
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{t: t, prFound: true}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql", f.handleGraphQL)
	mux.HandleFunc("GET /repos/octo/widgets/commits/deadbeef/check-runs", f.handleList)
	mux.HandleFunc("POST /repos/octo/widgets/check-runs", f.handleCreate)
	mux.HandleFunc("PATCH /repos/octo/widgets/check-runs/{id}", f.handleUpdate)

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) handleGraphQL(w http.ResponseWriter, _ *http.Request) {
	var pr any
	if f.prFound {
		pr = map[string]any{
			"files": map[string]any{
				"pageInfo": map[string]any{"hasNextPage": false},
				"nodes":    []any{map[string]any{"path": "a.ts"}, map[string]any{"path": "b.ts"}},
			},
			"commits": map[string]any{
				"totalCount": 3,
				"nodes":      []any{map[string]any{"commit": map[string]any{"oid": "deadbeef"}}},
			},
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"repository": map[string]any{"pullRequest": pr}},
	})
}

func (f *fakeGitHub) handleList(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "in_progress", r.URL.Query().Get("status"))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total_count": len(f.existing),
		"check_runs":  f.existing,
	})
}

func (f *fakeGitHub) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	f.mu.Lock()
	f.creates = append(f.creates, body)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": 99, "name": body["name"], "status": "in_progress"})
}

func (f *fakeGitHub) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	body["check_run_id"] = r.PathValue("id")
	f.mu.Lock()
	f.updates = append(f.updates, body)
	f.updateAt = time.Now()
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": 1, "status": "completed"})
}

// factory returns an apiFactory pointing at the fake server and records
// whether it was invoked.
func (f *fakeGitHub) factory(called *bool) apiFactory {
	return func(cfg *config.Config) (githubAPI, error) {
		*called = true
		return githubadapter.NewClientWithHTTPClient(f.server.Client(), f.server.URL+"/", cfg.Token)
	}
}

func (f *fakeGitHub) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func writeEvent(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	return path
}

func pullRequestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Token:     "abc",
		CheckName: "jscpd",
		Repo:      model.RepoRef{Owner: "octo", Name: "widgets"},
		EventName: "pull_request",
		EventPath: writeEvent(t, `{"action":"synchronize","number":42,"pull_request":{"number":42}}`),
	}
}

func TestExecute_NoCredential(t *testing.T) {
	gh := newFakeGitHub(t)
	called := false

	err := execute(context.Background(), &config.Config{CheckName: "jscpd"}, gh.factory(&called), testDelay)

	require.NoError(t, err)
	assert.False(t, called, "no client should be built without a credential")
	assert.Empty(t, gh.requestLog())
}

func TestExecute_NoPullRequestInEvent(t *testing.T) {
	gh := newFakeGitHub(t)
	called := false
	cfg := &config.Config{
		Token:     "abc",
		CheckName: "jscpd",
		Repo:      model.RepoRef{Owner: "octo", Name: "widgets"},
		EventName: "push",
		EventPath: writeEvent(t, `{"ref":"refs/heads/main"}`),
	}

	err := execute(context.Background(), cfg, gh.factory(&called), testDelay)

	require.NoError(t, err)
	assert.Empty(t, gh.requestLog(), "no external calls without a pull request number")
}

func TestExecute_PullRequestNotFound(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.prFound = false
	called := false

	err := execute(context.Background(), pullRequestConfig(t), gh.factory(&called), testDelay)

	require.NoError(t, err)
	assert.Equal(t, []string{"POST /graphql"}, gh.requestLog(), "only the query runs when the PR is absent")
}

func TestExecute_CreatesAndCompletesCheckRun(t *testing.T) {
	gh := newFakeGitHub(t)
	called := false

	start := time.Now()
	err := execute(context.Background(), pullRequestConfig(t), gh.factory(&called), testDelay)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []string{
		"POST /graphql",
		"GET /repos/octo/widgets/commits/deadbeef/check-runs",
		"POST /repos/octo/widgets/check-runs",
		"PATCH /repos/octo/widgets/check-runs/99",
	}, gh.requestLog())

	require.Len(t, gh.creates, 1)
	assert.Equal(t, "jscpd", gh.creates[0]["name"])
	assert.Equal(t, "deadbeef", gh.creates[0]["head_sha"])
	assert.Equal(t, "in_progress", gh.creates[0]["status"])
	assert.NotEmpty(t, gh.creates[0]["started_at"])

	require.Len(t, gh.updates, 1)
	assert.Equal(t, "99", gh.updates[0]["check_run_id"])
	assert.Equal(t, "completed", gh.updates[0]["status"])
	assert.Equal(t, "success", gh.updates[0]["conclusion"])
	assert.NotEmpty(t, gh.updates[0]["completed_at"])
	output, ok := gh.updates[0]["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.ts, b.ts", output["summary"])
	assert.GreaterOrEqual(t, gh.updateAt.Sub(start), testDelay, "completion must wait for the delay")
}

func TestExecute_ReusesInProgressCheckRun(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.existing = []map[string]any{
		{"id": 3, "name": "lint", "status": "in_progress", "head_sha": "deadbeef"},
		{"id": 7, "name": "jscpd", "status": "in_progress", "head_sha": "deadbeef"},
	}
	called := false

	err := execute(context.Background(), pullRequestConfig(t), gh.factory(&called), testDelay)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"POST /graphql",
		"GET /repos/octo/widgets/commits/deadbeef/check-runs",
		"PATCH /repos/octo/widgets/check-runs/7",
	}, gh.requestLog())
	assert.Empty(t, gh.creates)
	require.Len(t, gh.updates, 1)
	assert.Equal(t, "7", gh.updates[0]["check_run_id"])
}

func TestExecute_MalformedEventPayload(t *testing.T) {
	gh := newFakeGitHub(t)
	called := false
	cfg := pullRequestConfig(t)
	cfg.EventPath = writeEvent(t, `{"number":`)

	err := execute(context.Background(), cfg, gh.factory(&called), testDelay)

	require.Error(t, err)
	assert.False(t, called)
	assert.Empty(t, gh.requestLog())
}

func TestExecute_ListFailureFailsRun(t *testing.T) {
	gh := newFakeGitHub(t)
	called := false
	cfg := pullRequestConfig(t)
	cfg.Repo = model.RepoRef{Owner: "octo", Name: "other"}

	err := execute(context.Background(), cfg, gh.factory(&called), testDelay)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "octo/other")
	for _, req := range gh.requestLog() {
		assert.NotContains(t, req, "PATCH", "no completion after a failed search")
	}
}
