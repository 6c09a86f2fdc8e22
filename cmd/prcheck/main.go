package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/prcheck/internal/adapter/driven/github"
	"github.com/ericfisherdev/prcheck/internal/adapter/driving/action"
	"github.com/ericfisherdev/prcheck/internal/application"
	"github.com/ericfisherdev/prcheck/internal/config"
	"github.com/ericfisherdev/prcheck/internal/domain/model"
	"github.com/ericfisherdev/prcheck/internal/domain/port/driven"
)

// githubAPI is the pair of driven ports one invocation needs.
type githubAPI interface {
	driven.CommitQuerier
	driven.CheckRunAPI
}

// apiFactory builds the GitHub adapter once a credential is known to exist.
type apiFactory func(cfg *config.Config) (githubAPI, error)

func main() {
	slog.SetDefault(newLogger())

	if err := run(); err != nil {
		action.SetFailed(os.Stdout, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if action.Detect() {
		return slog.New(action.NewHandler(os.Stdout, slog.LevelDebug))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()}))
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM). Cancelling it drops a
	// pending completion.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, cfg, newGitHubAPI, application.DefaultCompletionDelay)
}

// execute runs one invocation. It returns nil without any API call when no
// credential is configured, and blocks until the scheduled completion has
// been issued so the update is not lost on exit.
func execute(ctx context.Context, cfg *config.Config, newAPI apiFactory, delay time.Duration) error {
	if !cfg.HasCredential() {
		slog.Debug("no secret provided")
		return nil
	}

	// 3. Resolve the pull request number from the event payload.
	number, err := action.PullRequestNumber(cfg.EventName, cfg.EventPath)
	if err != nil {
		return err
	}
	slog.Debug("invocation context",
		"repo", cfg.Repo.FullName(),
		"event", cfg.EventName,
		"pr_number", number,
		"check_name", cfg.CheckName,
	)

	// 4. Wire the GitHub adapter and the report service.
	api, err := newAPI(cfg)
	if err != nil {
		return err
	}
	svc := application.NewReportService(api, api, delay)

	// 5. Report, then wait for the delayed completion.
	err = svc.Report(ctx, application.Invocation{
		PullRequest: model.PullRequestRef{Repo: cfg.Repo, Number: number},
		CheckName:   cfg.CheckName,
	})
	svc.Wait()
	return err
}

func newGitHubAPI(cfg *config.Config) (githubAPI, error) {
	client, err := githubadapter.NewClient(cfg.Token, githubadapter.Options{
		APIURL:      cfg.APIURL,
		GraphQLURL:  cfg.GraphQLURL,
		CallTimeout: cfg.CallTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
