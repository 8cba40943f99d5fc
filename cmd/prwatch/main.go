package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/gmorris/prwatch/internal/adapter/auth"
	"github.com/gmorris/prwatch/internal/adapter/cli"
	githubadapter "github.com/gmorris/prwatch/internal/adapter/github"
	"github.com/gmorris/prwatch/internal/adapter/gitrepo"
	"github.com/gmorris/prwatch/internal/adapter/observability"
	"github.com/gmorris/prwatch/internal/config"
	"github.com/gmorris/prwatch/internal/domain"
	"github.com/gmorris/prwatch/internal/usecase/comments"
	usecasegithub "github.com/gmorris/prwatch/internal/usecase/github"
	"github.com/gmorris/prwatch/internal/usecase/watch"
	"github.com/gmorris/prwatch/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "prwatch",
		EnvPrefix:   "PRW",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	token, err := auth.ResolveToken(ctx, auth.Options{ConfigToken: cfg.GitHub.Token})
	if err != nil {
		return err
	}

	client := githubadapter.NewClient(token)
	if cfg.GitHub.BaseURL != "" {
		client.SetBaseURL(cfg.GitHub.BaseURL)
	}
	client.SetHTTPClient(&http.Client{
		Timeout:   30 * time.Second,
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
	})

	engine := gitrepo.NewEngine(".")

	var logger watch.Logger = observability.NopLogger{}
	if cfg.Observability.Logging.Enabled {
		logger = observability.NewDefaultLogger(
			observability.ParseLevel(cfg.Observability.Logging.Level),
			observability.ParseFormat(cfg.Observability.Logging.Format),
		)
	}

	watchDefaults, err := parseWatchConfig(cfg.Watch)
	if err != nil {
		return err
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Snapshots: func(pr domain.PullRequest, opts comments.FilterOptions) cli.Snapshotter {
			return comments.NewService(client, pr, nil, opts)
		},
		Replier:       usecasegithub.NewReplier(client),
		Repo:          engine,
		Locator:       client,
		Logger:        logger,
		WatchDefaults: watchDefaults,
		DefaultFormat: cfg.Output.Format,
		DefaultColor:  cfg.Output.Color,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// parseWatchConfig converts the config's duration strings into loop
// timings, rejecting unparseable values up front.
func parseWatchConfig(cfg config.WatchConfig) (watch.Config, error) {
	out := watch.DefaultConfig()
	for _, entry := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"watch.interval", cfg.Interval, &out.Interval},
		{"watch.idleTimeout", cfg.IdleTimeout, &out.IdleTimeout},
		{"watch.grace", cfg.Grace, &out.Grace},
	} {
		if entry.value == "" {
			continue
		}
		d, err := time.ParseDuration(entry.value)
		if err != nil {
			return watch.Config{}, fmt.Errorf("invalid %s %q: %w", entry.name, entry.value, err)
		}
		*entry.dst = d
	}
	return out, nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "prwatch"))
	}
	return paths
}

// Compile-time checks that the adapters satisfy the ports they are wired to.
var (
	_ comments.Fetcher       = (*githubadapter.Client)(nil)
	_ cli.PullRequestLocator = (*githubadapter.Client)(nil)
	_ cli.RepoResolver       = (*gitrepo.Engine)(nil)
	_ cli.Replier            = (*usecasegithub.Replier)(nil)
	_ watch.Logger           = (*observability.DefaultLogger)(nil)
	_ watch.Logger           = observability.NopLogger{}
)
