// Package github implements the CommitQuerier and CheckRunAPI ports using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
	"github.com/ericfisherdev/prcheck/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CommitQuerier = (*Client)(nil)
	_ driven.CheckRunAPI   = (*Client)(nil)
)

// Default endpoints for github.com. GitHub Enterprise Server runners export
// their own values through GITHUB_API_URL and GITHUB_GRAPHQL_URL.
const (
	DefaultAPIURL     = "https://api.github.com"
	DefaultGraphQLURL = "https://api.github.com/graphql"
)

// Options configures the endpoints and per-call timeout of a Client.
type Options struct {
	APIURL      string        // REST base URL; DefaultAPIURL when empty.
	GraphQLURL  string        // GraphQL endpoint; DefaultGraphQLURL when empty.
	CallTimeout time.Duration // Upper bound for each API call; 0 disables.
}

// Client implements the driven ports using the go-github library for REST
// and plain HTTP for GraphQL.
type Client struct {
	gh          *gh.Client
	token       string // Stored for GraphQL Authorization header.
	graphqlURL  string
	graphqlHTTP *http.Client
	callTimeout time.Duration
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with token auth)
func NewClient(token string, opts Options) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if err := setBaseURL(client, apiURL); err != nil {
		return nil, err
	}

	graphqlURL := opts.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = DefaultGraphQLURL
	}

	return &Client{
		gh:          client,
		token:       token,
		graphqlURL:  graphqlURL,
		graphqlHTTP: &http.Client{},
		callTimeout: opts.CallTimeout,
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	// Derive graphqlURL from baseURL so httptest servers can intercept GraphQL requests.
	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		gh:          client,
		token:       token,
		graphqlURL:  graphqlU.String(),
		graphqlHTTP: httpClient,
	}, nil
}

// WithCallTimeout returns a shallow copy of c whose API calls are bounded by d.
func (c *Client) WithCallTimeout(d time.Duration) *Client {
	cp := *c
	cp.callTimeout = d
	return &cp
}

// callContext bounds a single API call by the configured timeout.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.callTimeout)
}

// setBaseURL points the REST client at rawURL. go-github requires a trailing slash.
func setBaseURL(client *gh.Client, rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing API URL %q: %w", rawURL, err)
	}
	client.BaseURL = u
	return nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// mapCheckRun converts a go-github CheckRun to a domain model CheckRun.
func mapCheckRun(cr *gh.CheckRun) model.CheckRun {
	var startedAt, completedAt time.Time
	if cr.StartedAt != nil {
		startedAt = cr.GetStartedAt().Time
	}
	if cr.CompletedAt != nil {
		completedAt = cr.GetCompletedAt().Time
	}

	return model.CheckRun{
		ID:          cr.GetID(),
		Name:        cr.GetName(),
		HeadSHA:     cr.GetHeadSHA(),
		Status:      model.CheckStatus(cr.GetStatus()),
		Conclusion:  model.Conclusion(cr.GetConclusion()),
		Title:       cr.GetOutput().GetTitle(),
		Summary:     cr.GetOutput().GetSummary(),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}
}

// ErrNoCommits is returned when a pull request resolves but its commit list is empty.
var ErrNoCommits = errors.New("pull request has no commits")
