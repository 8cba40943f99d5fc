package domain

import "strings"

// knownBotNames are bot display names that do not carry the "[bot]" suffix
// in the author field.
var knownBotNames = map[string]bool{
	"coderabbitai": true,
	"vercel":       true,
	"netlify":      true,
	"dependabot":   true,
}

// ciAccountName is the service account GitHub Actions posts under when the
// "[bot]" suffix is stripped by intermediate tooling.
const ciAccountName = "github-actions"

// IsAutomatedAuthor reports whether an author name looks like an automated
// account. The check is deliberately permissive: it favors false positives
// (a human handle containing "bot") over false negatives, because the
// meta-comment classifier and reply-status coloring downstream both depend
// on automated authors never slipping through as humans. Do not tighten
// this without revisiting those consumers.
func IsAutomatedAuthor(author string) bool {
	if author == "" {
		return false
	}
	if strings.HasSuffix(author, "[bot]") {
		return true
	}
	if knownBotNames[author] {
		return true
	}
	if strings.Contains(author, "bot") {
		return true
	}
	return author == ciAccountName
}
