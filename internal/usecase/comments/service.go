package comments

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gmorris/prwatch/internal/adapter/github"
	"github.com/gmorris/prwatch/internal/domain"
)

// Fetcher lists the three discussion collections for a pull request.
// This interface allows for mocking in tests.
type Fetcher interface {
	ListReviewComments(ctx context.Context, owner, repo string, number int) ([]github.ReviewComment, error)
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]github.IssueComment, error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]github.Review, error)
}

// FetchCollections retrieves all three fully-paginated discussion streams
// for one pull request. The three list calls are independent read-only
// requests, so they run concurrently and join before returning; ordering
// between them does not matter because normalization re-sorts afterward.
// Any single failure fails the whole fetch (no partial result).
func FetchCollections(ctx context.Context, fetcher Fetcher, pr domain.PullRequest) (github.Collections, error) {
	var raw github.Collections

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw.ReviewComments, err = fetcher.ListReviewComments(ctx, pr.Owner, pr.Repo, pr.Number)
		return err
	})
	g.Go(func() error {
		var err error
		raw.IssueComments, err = fetcher.ListIssueComments(ctx, pr.Owner, pr.Repo, pr.Number)
		return err
	})
	g.Go(func() error {
		var err error
		raw.Reviews, err = fetcher.ListReviews(ctx, pr.Owner, pr.Repo, pr.Number)
		return err
	})
	if err := g.Wait(); err != nil {
		return github.Collections{}, err
	}

	return raw, nil
}

// Service runs the fetch → normalize → filter pipeline for one pull
// request. It is the snapshot source used by both the one-shot commands
// and the watch loop.
type Service struct {
	fetcher    Fetcher
	pr         domain.PullRequest
	predicates []MetaPredicate
	opts       FilterOptions
}

// NewService creates a pipeline bound to one pull request. A nil
// predicates slice selects the default meta-comment suppression list.
func NewService(fetcher Fetcher, pr domain.PullRequest, predicates []MetaPredicate, opts FilterOptions) *Service {
	return &Service{
		fetcher:    fetcher,
		pr:         pr,
		predicates: predicates,
		opts:       opts,
	}
}

// Snapshot fetches, normalizes, and filters the discussion once.
// The result is built fresh on every call and safe for the caller to keep.
func (s *Service) Snapshot(ctx context.Context) ([]domain.Comment, error) {
	raw, err := FetchCollections(ctx, s.fetcher, s.pr)
	if err != nil {
		return nil, err
	}
	return Filter(Normalize(raw, s.predicates), s.opts), nil
}
