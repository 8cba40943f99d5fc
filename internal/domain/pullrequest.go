package domain

import "fmt"

// PullRequest identifies one pull request on the hosting service.
type PullRequest struct {
	Owner  string
	Repo   string
	Number int
}

func (p PullRequest) String() string {
	return fmt.Sprintf("%s/%s#%d", p.Owner, p.Repo, p.Number)
}
