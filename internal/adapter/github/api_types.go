package github

// GitHub REST API wire types for the three pull-request discussion streams.
// See: https://docs.github.com/en/rest/pulls/comments
//      https://docs.github.com/en/rest/issues/comments
//      https://docs.github.com/en/rest/pulls/reviews
//
// Timestamps stay RFC3339 strings on the wire types; the normalizer parses
// them once when building domain entities.

// User represents a GitHub account in API responses.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
	Type  string `json:"type"` // "User" or "Bot"
}

// ReviewComment is an inline code comment anchored to a diff location.
// A non-zero InReplyToID marks it as a thread reply.
type ReviewComment struct {
	ID          int64  `json:"id"`
	User        User   `json:"user"`
	Body        string `json:"body"`
	Path        string `json:"path"`
	Line        int    `json:"line"`
	DiffHunk    string `json:"diff_hunk"`
	InReplyToID int64  `json:"in_reply_to_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	HTMLURL     string `json:"html_url"`
}

// IssueComment is a general conversation comment on the pull request.
// GitHub serves these through the issues API.
type IssueComment struct {
	ID        int64  `json:"id"`
	User      User   `json:"user"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	HTMLURL   string `json:"html_url"`
}

// Review is a submitted review verdict.
// State is one of APPROVED, CHANGES_REQUESTED, COMMENTED, DISMISSED, PENDING.
type Review struct {
	ID          int64  `json:"id"`
	User        User   `json:"user"`
	Body        string `json:"body"`
	State       string `json:"state"`
	SubmittedAt string `json:"submitted_at"`
	HTMLURL     string `json:"html_url"`
}

// PullRequestSummary is the subset of the pull-request object needed to
// resolve a PR number from a branch name.
type PullRequestSummary struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
}

// Collections bundles the three fully-paginated discussion streams fetched
// for one pull request. It is consumed exactly once by normalization and
// not retained.
type Collections struct {
	ReviewComments []ReviewComment
	IssueComments  []IssueComment
	Reviews        []Review
}

// apiErrorResponse is GitHub's error envelope.
type apiErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
