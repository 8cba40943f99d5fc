// Package cli wires the cobra command tree. All collaborators arrive
// through Dependencies so commands stay testable without a network or a
// git checkout.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gmorris/prwatch/internal/adapter/github"
	jsonout "github.com/gmorris/prwatch/internal/adapter/output/json"
	"github.com/gmorris/prwatch/internal/adapter/output/text"
	"github.com/gmorris/prwatch/internal/config"
	"github.com/gmorris/prwatch/internal/domain"
	"github.com/gmorris/prwatch/internal/usecase/comments"
	"github.com/gmorris/prwatch/internal/usecase/watch"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Snapshotter produces one filtered snapshot of a PR discussion.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]domain.Comment, error)
}

// SnapshotFactory builds a snapshot pipeline for one pull request with
// the given filter options.
type SnapshotFactory func(pr domain.PullRequest, opts comments.FilterOptions) Snapshotter

// Replier posts a response to a review thread.
type Replier interface {
	Reply(ctx context.Context, pr domain.PullRequest, commentID int64, body string) (string, error)
}

// RepoResolver reads identity from the local checkout.
type RepoResolver interface {
	Identity(ctx context.Context) (owner, repo string, err error)
	CurrentBranch(ctx context.Context) (string, error)
}

// PullRequestLocator finds open pull requests for a branch.
type PullRequestLocator interface {
	ListPullRequestsByHead(ctx context.Context, owner, repo, branch string) ([]github.PullRequestSummary, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Snapshots SnapshotFactory
	Replier   Replier
	Repo      RepoResolver
	Locator   PullRequestLocator
	Logger    watch.Logger
	Args      Arguments

	// WatchDefaults comes from config; flags override per invocation.
	WatchDefaults watch.Config

	// DefaultFormat is "text" or "json"; DefaultColor is auto/always/never.
	DefaultFormat string
	DefaultColor  string

	// IsTerminal reports whether stdout is a TTY; nil disables color in
	// auto mode.
	IsTerminal func() bool

	Version string
}

// filterFlags holds the shared actor/state filter flags.
type filterFlags struct {
	onlyBots   bool
	onlyHumans bool
	unresolved bool
	unanswered bool
}

func (f filterFlags) options() comments.FilterOptions {
	opts := comments.FilterOptions{
		Actor: comments.ActorAll,
		State: comments.StateAll,
	}
	// When both actor flags are set, the automated view wins.
	switch {
	case f.onlyBots:
		opts.Actor = comments.ActorAutomated
	case f.onlyHumans:
		opts.Actor = comments.ActorHumans
	}
	// When both state flags are set, the stricter unresolved view wins.
	switch {
	case f.unresolved:
		opts.State = comments.StateUnresolved
	case f.unanswered:
		opts.State = comments.StateUnanswered
	}
	return opts
}

func registerFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().BoolVar(&f.onlyBots, "only-bots", false, "Show only comments from automated authors")
	cmd.Flags().BoolVar(&f.onlyHumans, "only-humans", false, "Show only comments from human authors")
	cmd.Flags().BoolVar(&f.unresolved, "unresolved", false, "Show only comments that are neither resolved nor answered by a human")
	cmd.Flags().BoolVar(&f.unanswered, "unanswered", false, "Show only comments with no replies at all")
}

// targetFlags holds the shared repository/PR targeting flags.
type targetFlags struct {
	owner string
	repo  string
}

func registerTargetFlags(cmd *cobra.Command, f *targetFlags) {
	cmd.Flags().StringVar(&f.owner, "owner", "", "Repository owner (default: parsed from the origin remote)")
	cmd.Flags().StringVar(&f.repo, "repo", "", "Repository name (default: parsed from the origin remote)")
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "prwatch",
		Short: "Fetch, filter, and watch GitHub pull request discussions",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(commentsCommand(deps))
	root.AddCommand(watchCommand(deps))
	root.AddCommand(replyCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func commentsCommand(deps Dependencies) *cobra.Command {
	var target targetFlags
	var filters filterFlags
	var asJSON bool
	var colorMode string

	cmd := &cobra.Command{
		Use:   "comments [pr-number]",
		Short: "Print the current discussion snapshot for a pull request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pr, err := resolvePullRequest(ctx, deps, target, args)
			if err != nil {
				return err
			}

			snapshot, err := deps.Snapshots(pr, filters.options()).Snapshot(ctx)
			if err != nil {
				return err
			}

			if useJSON(asJSON, deps.DefaultFormat) {
				return jsonout.NewWriter(cmd.OutOrStdout()).WriteComments(snapshot)
			}
			printer := text.NewPrinter(cmd.OutOrStdout(), enableColor(colorMode, deps))
			return printer.PrintComments(snapshot)
		},
	}

	registerTargetFlags(cmd, &target)
	registerFilterFlags(cmd, &filters)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	cmd.Flags().StringVar(&colorMode, "color", "", "Color output: auto, always, or never")

	return cmd
}

func watchCommand(deps Dependencies) *cobra.Command {
	var target targetFlags
	var filters filterFlags
	var asJSON bool
	var colorMode string
	var interval time.Duration
	var idleTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch [pr-number]",
		Short: "Poll a pull request until new discussion activity appears",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pr, err := resolvePullRequest(ctx, deps, target, args)
			if err != nil {
				return err
			}

			cfg := deps.WatchDefaults
			if cmd.Flags().Changed("interval") {
				cfg.Interval = interval
			}
			if cmd.Flags().Changed("idle-timeout") {
				cfg.IdleTimeout = idleTimeout
			}

			source := deps.Snapshots(pr, filters.options())
			watcher := watch.New(cfg, watch.Deps{
				Source: source,
				Logger: deps.Logger,
				OnPrimed: func(count int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s: %d existing comment(s), polling every %s\n",
						pr, count, cfg.Interval)
				},
			})
			outcome, err := watcher.Run(ctx)
			if err != nil {
				return err
			}

			if useJSON(asJSON, deps.DefaultFormat) {
				return jsonout.NewWriter(cmd.OutOrStdout()).WriteOutcome(outcome)
			}
			printer := text.NewPrinter(cmd.OutOrStdout(), enableColor(colorMode, deps))
			return printer.PrintOutcome(outcome)
		},
	}

	registerTargetFlags(cmd, &target)
	registerFilterFlags(cmd, &filters)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	cmd.Flags().StringVar(&colorMode, "color", "", "Color output: auto, always, or never")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Time between polls")
	cmd.Flags().DurationVar(&idleTimeout, "idle-timeout", 600*time.Second, "Give up after this long without new activity")

	return cmd
}

func replyCommand(deps Dependencies) *cobra.Command {
	var target targetFlags
	var colorMode string

	cmd := &cobra.Command{
		Use:   "reply <pr-number> <comment-id> <message>",
		Short: "Reply to a review comment thread",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pr, err := resolvePullRequest(ctx, deps, target, args[:1])
			if err != nil {
				return err
			}

			commentID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid comment id %q: %w", args[1], err)
			}

			url, err := deps.Replier.Reply(ctx, pr, commentID, args[2])
			if err != nil {
				return err
			}
			printer := text.NewPrinter(cmd.OutOrStdout(), enableColor(colorMode, deps))
			return printer.PrintReplyPosted(url)
		},
	}

	registerTargetFlags(cmd, &target)
	cmd.Flags().StringVar(&colorMode, "color", "", "Color output: auto, always, or never")

	return cmd
}

// resolvePullRequest combines flags, positional args, and the local
// checkout into a full PR target. Every failure here is a configuration
// error raised before any discussion fetch.
func resolvePullRequest(ctx context.Context, deps Dependencies, target targetFlags, args []string) (domain.PullRequest, error) {
	owner, repo := target.owner, target.repo
	if owner == "" || repo == "" {
		if deps.Repo == nil {
			return domain.PullRequest{}, &config.ConfigurationError{
				Missing: "repository",
				Hint:    "pass --owner and --repo",
			}
		}
		resolvedOwner, resolvedRepo, err := deps.Repo.Identity(ctx)
		if err != nil {
			return domain.PullRequest{}, &config.ConfigurationError{
				Missing: "repository",
				Hint:    fmt.Sprintf("pass --owner and --repo, or run inside a clone with an origin remote (%v)", err),
			}
		}
		if owner == "" {
			owner = resolvedOwner
		}
		if repo == "" {
			repo = resolvedRepo
		}
	}

	if len(args) > 0 {
		number, err := strconv.Atoi(args[0])
		if err != nil || number <= 0 {
			return domain.PullRequest{}, fmt.Errorf("invalid pull request number %q", args[0])
		}
		return domain.PullRequest{Owner: owner, Repo: repo, Number: number}, nil
	}

	// No positional number: locate the open PR for the current branch.
	if deps.Repo == nil || deps.Locator == nil {
		return domain.PullRequest{}, &config.ConfigurationError{
			Missing: "pull request number",
			Hint:    "pass the number as an argument",
		}
	}
	branch, err := deps.Repo.CurrentBranch(ctx)
	if err != nil {
		return domain.PullRequest{}, &config.ConfigurationError{
			Missing: "pull request number",
			Hint:    fmt.Sprintf("pass the number as an argument (%v)", err),
		}
	}
	open, err := deps.Locator.ListPullRequestsByHead(ctx, owner, repo, branch)
	if err != nil {
		return domain.PullRequest{}, err
	}
	if len(open) == 0 {
		return domain.PullRequest{}, &config.ConfigurationError{
			Missing: "pull request number",
			Hint:    fmt.Sprintf("no open pull request found for branch %q", branch),
		}
	}
	return domain.PullRequest{Owner: owner, Repo: repo, Number: open[0].Number}, nil
}

func useJSON(flag bool, defaultFormat string) bool {
	return flag || defaultFormat == "json"
}

// enableColor resolves the color mode: the flag wins, then config, then
// auto. Auto means a TTY without NO_COLOR set.
func enableColor(flagMode string, deps Dependencies) bool {
	mode := flagMode
	if mode == "" {
		mode = deps.DefaultColor
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return deps.IsTerminal != nil && deps.IsTerminal()
	}
}
