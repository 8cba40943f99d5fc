// Package gitrepo resolves the pull-request target from the local
// checkout: which GitHub repository "origin" points at, and which branch
// is checked out.
package gitrepo

import (
	"context"
	"fmt"
	"strings"

	goGit "github.com/go-git/go-git/v5"
)

// Engine reads repository identity from a local clone backed by go-git.
type Engine struct {
	repoDir string
}

// NewEngine constructs a git engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// Identity returns the owner and repository name parsed from the origin
// remote. The first URL of the remote wins.
func (e *Engine) Identity(ctx context.Context) (owner, repo string, err error) {
	r, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", fmt.Errorf("open repo: %w", err)
	}

	remote, err := r.Remote("origin")
	if err != nil {
		return "", "", fmt.Errorf("resolve origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", "", fmt.Errorf("origin remote has no URL")
	}

	owner, repo, err = ParseRemoteURL(urls[0])
	if err != nil {
		return "", "", fmt.Errorf("parse origin URL: %w", err)
	}
	return owner, repo, nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	r, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	name := head.Name()
	if name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

// ParseRemoteURL extracts owner and repository name from the common
// GitHub remote URL shapes:
//
//	git@github.com:owner/repo.git
//	https://github.com/owner/repo.git
//	ssh://git@github.com/owner/repo.git
//
// The trailing ".git" is optional in all of them.
func ParseRemoteURL(raw string) (owner, repo string, err error) {
	path := raw

	switch {
	case strings.HasPrefix(path, "git@"):
		// scp-like syntax: everything after the colon is the path.
		idx := strings.Index(path, ":")
		if idx < 0 {
			return "", "", fmt.Errorf("malformed scp-style URL %q", raw)
		}
		path = path[idx+1:]
	case strings.HasPrefix(path, "ssh://"), strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"):
		idx := strings.Index(path, "://")
		path = path[idx+3:]
		// Strip "user@host/" or "host/".
		slash := strings.Index(path, "/")
		if slash < 0 {
			return "", "", fmt.Errorf("no path in URL %q", raw)
		}
		path = path[slash+1:]
	default:
		return "", "", fmt.Errorf("unrecognized remote URL %q", raw)
	}

	path = strings.TrimSuffix(path, ".git")
	path = strings.Trim(path, "/")

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected owner/repo in %q", raw)
	}
	return parts[0], parts[1], nil
}
