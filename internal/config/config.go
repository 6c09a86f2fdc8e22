// Package config loads action configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ericfisherdev/prcheck/internal/domain/model"
)

// DefaultCheckName is the check run name used when the post-as input is empty.
const DefaultCheckName = "jscpd"

// Config holds the action configuration loaded from environment variables.
type Config struct {
	Token       string
	CheckName   string
	Repo        model.RepoRef
	EventName   string
	EventPath   string
	APIURL      string
	GraphQLURL  string
	CallTimeout time.Duration
}

// HasCredential returns true when a token was supplied. Without one the run
// is a no-op.
func (c *Config) HasCredential() bool {
	return c.Token != ""
}

// Load reads configuration from environment variables and returns a validated Config.
//
// Action inputs arrive as INPUT_SECRET and INPUT_POST-AS (the runner keeps the
// hyphen; INPUT_POST_AS is accepted too). Without a secret nothing else is
// validated since the run does nothing. With one, GITHUB_REPOSITORY is
// required. Optional variables with defaults: GITHUB_API_URL
// (https://api.github.com), GITHUB_GRAPHQL_URL (https://api.github.com/graphql),
// PRCHECK_CALL_TIMEOUT (30s, "0" disables).
func Load() (*Config, error) {
	cfg := &Config{
		Token:     strings.TrimSpace(os.Getenv("INPUT_SECRET")),
		CheckName: DefaultCheckName,
	}

	if v := firstNonEmpty(os.Getenv("INPUT_POST-AS"), os.Getenv("INPUT_POST_AS")); v != "" {
		cfg.CheckName = v
	}

	if !cfg.HasCredential() {
		return cfg, nil
	}

	repo, err := model.ParseRepoRef(os.Getenv("GITHUB_REPOSITORY"))
	if err != nil {
		return nil, fmt.Errorf("GITHUB_REPOSITORY: %w", err)
	}
	cfg.Repo = repo

	cfg.EventName = os.Getenv("GITHUB_EVENT_NAME")
	cfg.EventPath = os.Getenv("GITHUB_EVENT_PATH")

	cfg.APIURL = "https://api.github.com"
	if v, ok := os.LookupEnv("GITHUB_API_URL"); ok && v != "" {
		cfg.APIURL = v
	}

	cfg.GraphQLURL = "https://api.github.com/graphql"
	if v, ok := os.LookupEnv("GITHUB_GRAPHQL_URL"); ok && v != "" {
		cfg.GraphQLURL = v
	}

	cfg.CallTimeout = 30 * time.Second
	if v, ok := os.LookupEnv("PRCHECK_CALL_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PRCHECK_CALL_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("PRCHECK_CALL_TIMEOUT must not be negative, got %s", parsed)
		}
		cfg.CallTimeout = parsed
	}

	return cfg, nil
}

// LogLevel returns the level named by PRCHECK_LOG_LEVEL (debug, info, warn,
// error; default info). RUNNER_DEBUG=1, set when a workflow is re-run with
// debug logging, forces debug. Unknown names fall back to info.
func LogLevel() slog.Level {
	if os.Getenv("RUNNER_DEBUG") == "1" {
		return slog.LevelDebug
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("PRCHECK_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
