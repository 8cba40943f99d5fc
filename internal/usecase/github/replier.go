// Package github provides use cases for writing to GitHub discussions.
package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/gmorris/prwatch/internal/adapter/github"
	"github.com/gmorris/prwatch/internal/domain"
)

// ReplyClient defines the write operations the replier needs.
// This interface allows for mocking in tests.
type ReplyClient interface {
	CreateReviewCommentReply(ctx context.Context, owner, repo string, number int, commentID int64, body string) (*github.ReviewComment, error)
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*github.IssueComment, error)
}

// Replier posts responses to review threads. The thread-reply endpoint
// only accepts ids of inline review comments; when it rejects the request
// (stale id, general comment id, locked thread) the reply is posted as a
// general PR comment referencing the original id instead.
type Replier struct {
	client ReplyClient
}

// NewReplier creates a Replier with the given client.
func NewReplier(client ReplyClient) *Replier {
	return &Replier{client: client}
}

// Reply posts body as a response to the thread rooted at commentID and
// returns the created entity's permalink.
//
// Any non-success status from the thread endpoint triggers the fallback;
// transport errors propagate unchanged. If the fallback also fails with a
// non-success status, both statuses surface in a *github.ReplyError.
func (r *Replier) Reply(ctx context.Context, pr domain.PullRequest, commentID int64, body string) (string, error) {
	created, err := r.client.CreateReviewCommentReply(ctx, pr.Owner, pr.Repo, pr.Number, commentID, body)
	if err == nil {
		return created.HTMLURL, nil
	}

	var threadErr *github.StatusError
	if !errors.As(err, &threadErr) {
		return "", err
	}

	fallback := fmt.Sprintf("> Replying to review comment %d\n\n%s", commentID, body)
	comment, err := r.client.CreateIssueComment(ctx, pr.Owner, pr.Repo, pr.Number, fallback)
	if err == nil {
		return comment.HTMLURL, nil
	}

	var commentErr *github.StatusError
	if errors.As(err, &commentErr) {
		return "", &github.ReplyError{
			ThreadStatus:  threadErr.StatusCode,
			CommentStatus: commentErr.StatusCode,
			Body:          commentErr.Body,
		}
	}
	return "", err
}
