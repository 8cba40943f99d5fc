package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	apiVersion     = "2022-11-28"
	acceptHeader   = "application/vnd.github+json"
	userAgent      = "prwatch"

	// maxPaginationPages caps a single list operation. Together with the
	// visited-URL check it prevents runaway pagination on a misbehaving
	// server.
	maxPaginationPages = 50

	// maxResponseSize limits how much of an error body we read.
	maxResponseSize = 1 * 1024 * 1024
)

// pathSegmentRegex validates that owner/repo names only contain safe
// characters. GitHub allows alphanumeric, hyphens, underscores, and dots
// (but not leading dots).
var pathSegmentRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Client is an HTTP client for the GitHub pull-request discussion APIs.
// It performs no retries: a failed page read surfaces as a *FetchError and
// the enclosing operation aborts with partial pages discarded.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client authenticated with the given bearer token.
// The default transport honors proxy settings from the environment.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing or GitHub Enterprise).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// SetHTTPClient replaces the underlying transport. The zero configuration
// is fine for most callers; embedding processes inject their own client
// when they need custom proxies or instrumentation.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// ListReviewComments fetches every inline code comment on a pull request,
// following Link-header pagination until exhausted. Thread replies are
// included (non-zero InReplyToID) in server order.
func (c *Client) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]ReviewComment, error) {
	if err := validateTarget(owner, repo, number); err != nil {
		return nil, err
	}
	first := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments?per_page=100",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), number)
	return fetchAll[ReviewComment](ctx, c, first)
}

// ListIssueComments fetches every general conversation comment on a pull
// request. GitHub serves these through the issues API.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]IssueComment, error) {
	if err := validateTarget(owner, repo, number); err != nil {
		return nil, err
	}
	first := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=100",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), number)
	return fetchAll[IssueComment](ctx, c, first)
}

// ListReviews fetches every submitted review verdict on a pull request.
func (c *Client) ListReviews(ctx context.Context, owner, repo string, number int) ([]Review, error) {
	if err := validateTarget(owner, repo, number); err != nil {
		return nil, err
	}
	first := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews?per_page=100",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), number)
	return fetchAll[Review](ctx, c, first)
}

// ListPullRequestsByHead lists open pull requests whose head is the given
// branch. Used to resolve a PR number from the locally checked-out branch.
func (c *Client) ListPullRequestsByHead(ctx context.Context, owner, repo, branch string) ([]PullRequestSummary, error) {
	if err := validatePathSegment(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validatePathSegment(repo, "repo"); err != nil {
		return nil, err
	}
	first := fmt.Sprintf("%s/repos/%s/%s/pulls?state=open&per_page=100&head=%s",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo),
		url.QueryEscape(owner+":"+branch))
	return fetchAll[PullRequestSummary](ctx, c, first)
}

// CreateReviewCommentReply posts body as a reply inside the thread rooted
// at commentID. A non-success status surfaces as a *StatusError.
func (c *Client) CreateReviewCommentReply(ctx context.Context, owner, repo string, number int, commentID int64, body string) (*ReviewComment, error) {
	if err := validateTarget(owner, repo, number); err != nil {
		return nil, err
	}
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments/%d/replies",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), number, commentID)

	var created ReviewComment
	if err := c.postJSON(ctx, apiURL, map[string]string{"body": body}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateIssueComment posts body as a general comment on the pull request.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*IssueComment, error) {
	if err := validateTarget(owner, repo, number); err != nil {
		return nil, err
	}
	apiURL := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), number)

	var created IssueComment
	if err := c.postJSON(ctx, apiURL, map[string]string{"body": body}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// fetchAll retrieves a complete result set from a cursor-paginated list
// endpoint, concatenating pages in server-yielded order. Pagination follows
// the Link header's rel="next" relation; its absence ends the walk.
func fetchAll[T any](ctx context.Context, c *Client, firstURL string) ([]T, error) {
	var all []T
	visited := make(map[string]bool)

	next := firstURL
	for pages := 0; next != ""; pages++ {
		if pages >= maxPaginationPages {
			return nil, fmt.Errorf("pagination limit exceeded (%d pages)", maxPaginationPages)
		}
		if visited[next] {
			return nil, fmt.Errorf("pagination loop detected: URL already visited")
		}
		visited[next] = true

		page, nextURL, err := fetchPage[T](ctx, c, next)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		// The next URL comes from a response header; require it to stay on
		// the configured host before following it.
		if nextURL != "" && !c.isSameHost(nextURL) {
			return nil, fmt.Errorf("unsafe pagination URL in Link header: host mismatch")
		}
		next = nextURL
	}

	return all, nil
}

// fetchPage retrieves one page and the next-page URL, if any.
func fetchPage[T any](ctx context.Context, c *Client, pageURL string) ([]T, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return nil, "", &FetchError{
			StatusCode: resp.StatusCode,
			URL:        pageURL,
			Message:    parseErrorMessage(resp.StatusCode, bodyBytes),
		}
	}

	var items []T
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return items, parseNextLink(resp.Header.Get("Link")), nil
}

// postJSON executes a JSON POST and decodes the response into out.
// Non-success statuses surface as *StatusError with the raw body attached.
func (c *Client) postJSON(ctx context.Context, apiURL string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", apiURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// setHeaders sets the common headers for GitHub API requests: the bearer
// token, the versioned accept headers, and a fixed client identifier.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
}

// isSameHost checks that a pagination URL matches the configured base
// URL's scheme and host.
func (c *Client) isSameHost(nextURL string) bool {
	next, err := url.Parse(nextURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return next.Scheme == base.Scheme && next.Host == base.Host
}

// parseNextLink extracts the "next" URL from a Link header.
// Link header format: <url>; rel="next", <url>; rel="last"
func parseNextLink(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}

	for _, link := range strings.Split(linkHeader, ",") {
		parts := strings.Split(strings.TrimSpace(link), ";")
		if len(parts) < 2 {
			continue
		}
		if strings.TrimSpace(parts[1]) != `rel="next"` {
			continue
		}
		urlPart := strings.TrimSpace(parts[0])
		if strings.HasPrefix(urlPart, "<") && strings.HasSuffix(urlPart, ">") {
			return urlPart[1 : len(urlPart)-1]
		}
	}

	return ""
}

// validateTarget validates the owner/repo path segments and the PR number.
func validateTarget(owner, repo string, number int) error {
	if err := validatePathSegment(owner, "owner"); err != nil {
		return err
	}
	if err := validatePathSegment(repo, "repo"); err != nil {
		return err
	}
	if number <= 0 {
		return fmt.Errorf("invalid pull request number: %d", number)
	}
	return nil
}

// validatePathSegment whitelists the characters allowed in a URL path
// segment to prevent path traversal and injection.
func validatePathSegment(value, name string) error {
	if value == "" {
		return fmt.Errorf("invalid %s: must not be empty", name)
	}
	if strings.Contains(value, "..") {
		return fmt.Errorf("invalid %s: must not contain '..'", name)
	}
	if !pathSegmentRegex.MatchString(value) {
		return fmt.Errorf("invalid %s: must contain only alphanumeric characters, hyphens, underscores, and dots (not leading)", name)
	}
	return nil
}
