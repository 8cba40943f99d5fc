// Package auth resolves the GitHub credential used for API calls.
package auth

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/gmorris/prwatch/internal/config"
)

// CommandRunner executes an external command and returns its combined
// stdout. Injectable so tests never shell out.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

// Options control where ResolveToken looks.
type Options struct {
	// ConfigToken is the token from the configuration file, already
	// env-expanded. May be empty.
	ConfigToken string

	// Lookup reads environment variables; nil selects os.Getenv.
	Lookup func(key string) string

	// Run executes the gh CLI fallback; nil selects exec.CommandContext.
	Run CommandRunner
}

// ResolveToken returns a usable bearer token, trying in order: the
// GITHUB_TOKEN environment variable, the configuration file, and finally
// `gh auth token`. Exhausting all three yields a configuration error
// before any API call is attempted.
func ResolveToken(ctx context.Context, opts Options) (string, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.Getenv
	}
	if token := strings.TrimSpace(lookup("GITHUB_TOKEN")); token != "" {
		return token, nil
	}

	if token := strings.TrimSpace(opts.ConfigToken); token != "" {
		return token, nil
	}

	run := opts.Run
	if run == nil {
		run = execRunner
	}
	out, err := run(ctx, "gh", "auth", "token")
	if err == nil {
		if token := strings.TrimSpace(out); token != "" {
			return token, nil
		}
	}

	return "", &config.ConfigurationError{
		Missing: "GitHub token",
		Hint:    "set GITHUB_TOKEN, add github.token to the config file, or run `gh auth login`",
	}
}

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}
