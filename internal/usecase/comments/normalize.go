package comments

import (
	"sort"
	"strings"
	"time"

	"github.com/gmorris/prwatch/internal/adapter/github"
	"github.com/gmorris/prwatch/internal/domain"
)

// Normalize merges the three raw discussion streams into the unified
// entity model: replies are attached to their thread roots, derived status
// flags are computed, bodies are sanitized, and the result is sorted by
// creation time, newest first.
//
// A nil predicates slice selects DefaultMetaPredicates; a non-nil slice
// replaces the defaults wholesale (an empty non-nil slice suppresses
// nothing).
//
// Ties on CreatedAt are not explicitly broken: the sort is stable, so
// insertion order wins, which groups equal timestamps by kind (inline,
// general, verdict). That grouping is intentional.
func Normalize(raw github.Collections, predicates []MetaPredicate) []domain.Comment {
	if predicates == nil {
		predicates = DefaultMetaPredicates()
	}

	// Reply index: every inline comment carrying a parent id becomes a
	// Reply record keyed by that parent, in server order. Replies whose
	// parent is absent from the current inline set are dropped with it.
	replies := make(map[int64][]domain.Reply)
	for _, rc := range raw.ReviewComments {
		if rc.InReplyToID == 0 {
			continue
		}
		replies[rc.InReplyToID] = append(replies[rc.InReplyToID], domain.Reply{
			ID:          rc.ID,
			Author:      rc.User.Login,
			Body:        Sanitize(rc.Body),
			CreatedAt:   parseTime(rc.CreatedAt),
			IsAutomated: domain.IsAutomatedAuthor(rc.User.Login),
		})
	}

	var unified []domain.Comment

	for _, rc := range raw.ReviewComments {
		if rc.InReplyToID != 0 {
			continue // thread roots only
		}
		if isMeta(predicates, rc.User.Login, rc.Body) {
			continue
		}

		threadReplies := replies[rc.ID]
		hasHuman := false
		for _, r := range threadReplies {
			if !r.IsAutomated {
				hasHuman = true
				break
			}
		}

		unified = append(unified, domain.Comment{
			ID:            rc.ID,
			Kind:          domain.KindInline,
			Author:        rc.User.Login,
			IsAutomated:   domain.IsAutomatedAuthor(rc.User.Login),
			Location:      &domain.Location{Path: rc.Path, Line: rc.Line},
			Body:          Sanitize(rc.Body),
			CreatedAt:     parseTime(rc.CreatedAt),
			UpdatedAt:     parseTime(rc.UpdatedAt),
			Replies:       threadReplies,
			HasAnyReply:   len(threadReplies) > 0,
			HasHumanReply: hasHuman,
			URL:           rc.HTMLURL,
		})
	}

	for _, ic := range raw.IssueComments {
		if isMeta(predicates, ic.User.Login, ic.Body) {
			continue
		}
		unified = append(unified, domain.Comment{
			ID:          ic.ID,
			Kind:        domain.KindGeneral,
			Author:      ic.User.Login,
			IsAutomated: domain.IsAutomatedAuthor(ic.User.Login),
			Body:        Sanitize(ic.Body),
			CreatedAt:   parseTime(ic.CreatedAt),
			UpdatedAt:   parseTime(ic.UpdatedAt),
			URL:         ic.HTMLURL,
		})
	}

	for _, rv := range raw.Reviews {
		// Verdicts with no written text carry no actionable content.
		if strings.TrimSpace(rv.Body) == "" {
			continue
		}
		if isMeta(predicates, rv.User.Login, rv.Body) {
			continue
		}
		unified = append(unified, domain.Comment{
			ID:          rv.ID,
			Kind:        domain.KindReview,
			Author:      rv.User.Login,
			IsAutomated: domain.IsAutomatedAuthor(rv.User.Login),
			Body:        Sanitize(rv.Body),
			CreatedAt:   parseTime(rv.SubmittedAt),
			UpdatedAt:   parseTime(rv.SubmittedAt),
			IsResolved:  isTerminalVerdict(rv.State),
			URL:         rv.HTMLURL,
		})
	}

	sort.SliceStable(unified, func(i, j int) bool {
		return unified[i].CreatedAt.After(unified[j].CreatedAt)
	})

	return unified
}

// isTerminalVerdict reports whether a review state is terminal: approved
// or dismissed. Requested changes and plain comments remain open.
func isTerminalVerdict(state string) bool {
	switch strings.ToUpper(state) {
	case "APPROVED", "DISMISSED":
		return true
	default:
		return false
	}
}

// parseTime parses an RFC3339 wire timestamp, returning the zero time for
// malformed input so normalization never fails on bad data.
func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
