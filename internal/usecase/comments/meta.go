package comments

import "strings"

// MetaPredicate reports whether a comment is a non-actionable automated
// status message that should be suppressed before normalization.
// Predicates receive the raw (unsanitized) author and body.
type MetaPredicate func(author, body string) bool

// Fixed author/prefix pairs for the bots whose status chatter carries no
// review content. Deployment bots announce preview builds; the review bot
// announces how many findings a review produced.
const (
	vercelBotAuthor = "vercel[bot]"
	vercelPrefix    = "**The latest updates on your projects**"

	netlifyBotAuthor = "netlify[bot]"
	netlifyPrefix    = "### Deploy Preview"

	reviewBotAuthor = "coderabbitai[bot]"
	reviewBotPrefix = "**Actionable comments posted:"
)

// DefaultMetaPredicates returns the built-in suppression list: deployment
// status lines from the two deploy bots, and the review bot's
// summary-count announcements. Substantive findings from the same authors
// do not match and are retained.
//
// Callers may pass their own predicate list to Normalize to replace these
// wholesale; the override is not additive.
func DefaultMetaPredicates() []MetaPredicate {
	return []MetaPredicate{
		func(author, body string) bool {
			return author == vercelBotAuthor && strings.HasPrefix(body, vercelPrefix)
		},
		func(author, body string) bool {
			return author == netlifyBotAuthor && strings.HasPrefix(body, netlifyPrefix)
		},
		func(author, body string) bool {
			return author == reviewBotAuthor && strings.HasPrefix(body, reviewBotPrefix)
		},
	}
}

// isMeta evaluates predicates as "any match".
func isMeta(predicates []MetaPredicate, author, body string) bool {
	for _, match := range predicates {
		if match(author, body) {
			return true
		}
	}
	return false
}
