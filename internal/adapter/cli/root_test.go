package cli_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmorris/prwatch/internal/adapter/cli"
	"github.com/gmorris/prwatch/internal/adapter/github"
	"github.com/gmorris/prwatch/internal/config"
	"github.com/gmorris/prwatch/internal/domain"
	"github.com/gmorris/prwatch/internal/usecase/comments"
)

// recordingSnapshotter captures the pipeline parameters the CLI resolved.
type recordingSnapshotter struct {
	pr       domain.PullRequest
	opts     comments.FilterOptions
	snapshot []domain.Comment
	err      error
}

func (r *recordingSnapshotter) Snapshot(ctx context.Context) ([]domain.Comment, error) {
	return r.snapshot, r.err
}

type fakeRepo struct {
	owner  string
	repo   string
	branch string
	err    error
}

func (f *fakeRepo) Identity(ctx context.Context) (string, string, error) {
	return f.owner, f.repo, f.err
}

func (f *fakeRepo) CurrentBranch(ctx context.Context) (string, error) {
	return f.branch, f.err
}

type fakeLocator struct {
	summaries []github.PullRequestSummary
	err       error
	branch    string
}

func (f *fakeLocator) ListPullRequestsByHead(ctx context.Context, owner, repo, branch string) ([]github.PullRequestSummary, error) {
	f.branch = branch
	return f.summaries, f.err
}

type fakeReplier struct {
	pr        domain.PullRequest
	commentID int64
	body      string
	url       string
	err       error
}

func (f *fakeReplier) Reply(ctx context.Context, pr domain.PullRequest, commentID int64, body string) (string, error) {
	f.pr = pr
	f.commentID = commentID
	f.body = body
	return f.url, f.err
}

// newTestDeps builds Dependencies with a snapshot factory that records the
// last resolution into the returned snapshotter.
func newTestDeps(snap *recordingSnapshotter) cli.Dependencies {
	return cli.Dependencies{
		Snapshots: func(pr domain.PullRequest, opts comments.FilterOptions) cli.Snapshotter {
			snap.pr = pr
			snap.opts = opts
			return snap
		},
		Repo:          &fakeRepo{owner: "octo", repo: "widgets", branch: "feature/login"},
		Locator:       &fakeLocator{summaries: []github.PullRequestSummary{{Number: 42}}},
		DefaultFormat: "text",
		DefaultColor:  "never",
		Version:       "v1.2.3",
	}
}

func execute(t *testing.T, deps cli.Dependencies, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	deps.Args = cli.Arguments{OutWriter: &out, ErrWriter: &errOut}
	root := cli.NewRootCommand(deps)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestComments_ExplicitTarget(t *testing.T) {
	snap := &recordingSnapshotter{snapshot: []domain.Comment{
		{ID: 1, Kind: domain.KindGeneral, Author: "alice", Body: "hello", CreatedAt: time.Now()},
	}}
	deps := newTestDeps(snap)

	out, _, err := execute(t, deps, "comments", "7", "--owner", "octo", "--repo", "widgets")

	require.NoError(t, err)
	assert.Equal(t, domain.PullRequest{Owner: "octo", Repo: "widgets", Number: 7}, snap.pr)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "hello")
}

func TestComments_ResolvesRepoFromCheckout(t *testing.T) {
	snap := &recordingSnapshotter{}
	deps := newTestDeps(snap)

	_, _, err := execute(t, deps, "comments", "7")

	require.NoError(t, err)
	assert.Equal(t, "octo", snap.pr.Owner)
	assert.Equal(t, "widgets", snap.pr.Repo)
	assert.Equal(t, 7, snap.pr.Number)
}

func TestComments_ResolvesNumberFromBranch(t *testing.T) {
	snap := &recordingSnapshotter{}
	locator := &fakeLocator{summaries: []github.PullRequestSummary{{Number: 42}}}
	deps := newTestDeps(snap)
	deps.Locator = locator

	_, _, err := execute(t, deps, "comments")

	require.NoError(t, err)
	assert.Equal(t, 42, snap.pr.Number)
	assert.Equal(t, "feature/login", locator.branch)
}

func TestComments_NoOpenPRForBranch(t *testing.T) {
	snap := &recordingSnapshotter{}
	deps := newTestDeps(snap)
	deps.Locator = &fakeLocator{}

	_, _, err := execute(t, deps, "comments")

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "pull request number", cfgErr.Missing)
}

func TestComments_FilterFlagMapping(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantActor comments.ActorFilter
		wantState comments.StateFilter
	}{
		{"default shows all", nil, comments.ActorAll, comments.StateAll},
		{"only bots", []string{"--only-bots"}, comments.ActorAutomated, comments.StateAll},
		{"only humans", []string{"--only-humans"}, comments.ActorHumans, comments.StateAll},
		{"bots wins over humans", []string{"--only-bots", "--only-humans"}, comments.ActorAutomated, comments.StateAll},
		{"unresolved", []string{"--unresolved"}, comments.ActorAll, comments.StateUnresolved},
		{"unanswered", []string{"--unanswered"}, comments.ActorAll, comments.StateUnanswered},
		{"unresolved wins over unanswered", []string{"--unresolved", "--unanswered"}, comments.ActorAll, comments.StateUnresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &recordingSnapshotter{}
			deps := newTestDeps(snap)

			_, _, err := execute(t, deps, append([]string{"comments", "7"}, tt.args...)...)

			require.NoError(t, err)
			assert.Equal(t, tt.wantActor, snap.opts.Actor)
			assert.Equal(t, tt.wantState, snap.opts.State)
		})
	}
}

func TestComments_JSONOutput(t *testing.T) {
	snap := &recordingSnapshotter{snapshot: []domain.Comment{
		{ID: 9, Kind: domain.KindInline, Author: "coderabbitai[bot]", IsAutomated: true, Body: "check this"},
	}}
	deps := newTestDeps(snap)

	out, _, err := execute(t, deps, "comments", "7", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": 9`)
	assert.Contains(t, out, `"kind": "inline"`)
	assert.NotContains(t, out, "comment(s)", "json output carries no text decoration")
}

func TestComments_SnapshotFailurePropagates(t *testing.T) {
	snap := &recordingSnapshotter{err: &github.FetchError{StatusCode: 401, URL: "u", Message: "Bad credentials"}}
	deps := newTestDeps(snap)

	_, _, err := execute(t, deps, "comments", "7")

	var fetchErr *github.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 401, fetchErr.StatusCode)
}

func TestWatch_RunsToIdleTimeout(t *testing.T) {
	snap := &recordingSnapshotter{snapshot: []domain.Comment{{ID: 1}}}
	deps := newTestDeps(snap)

	out, _, err := execute(t, deps, "watch", "7",
		"--interval", "1ms", "--idle-timeout", "3ms")

	require.NoError(t, err)
	assert.Contains(t, out, "No new activity")
}

func TestReply_WiresArguments(t *testing.T) {
	snap := &recordingSnapshotter{}
	replier := &fakeReplier{url: "https://example.com/c/900"}
	deps := newTestDeps(snap)
	deps.Replier = replier

	out, _, err := execute(t, deps, "reply", "7", "123", "thanks, fixed")

	require.NoError(t, err)
	assert.Equal(t, domain.PullRequest{Owner: "octo", Repo: "widgets", Number: 7}, replier.pr)
	assert.Equal(t, int64(123), replier.commentID)
	assert.Equal(t, "thanks, fixed", replier.body)
	assert.Contains(t, out, "https://example.com/c/900")
}

func TestReply_RejectsBadCommentID(t *testing.T) {
	snap := &recordingSnapshotter{}
	deps := newTestDeps(snap)
	deps.Replier = &fakeReplier{}

	_, _, err := execute(t, deps, "reply", "7", "not-a-number", "body")

	assert.Error(t, err)
}

func TestRoot_VersionFlag(t *testing.T) {
	snap := &recordingSnapshotter{}
	deps := newTestDeps(snap)

	out, _, err := execute(t, deps, "--version")

	require.ErrorIs(t, err, cli.ErrVersionRequested)
	assert.Contains(t, out, "v1.2.3")
}

func TestRoot_InvalidPRNumber(t *testing.T) {
	snap := &recordingSnapshotter{}
	deps := newTestDeps(snap)

	_, _, err := execute(t, deps, "comments", "zero")

	assert.Error(t, err)
}
