// Package comments implements the discussion aggregation engine: body
// sanitization, meta-comment classification, normalization of the three
// raw comment streams into the unified domain model, and filtering.
package comments

import (
	"regexp"
	"strings"
)

// vendorDomain is the automation vendor whose self-promotional paragraphs
// are stripped from comment bodies.
const vendorDomain = "coderabbit.ai"

var (
	htmlCommentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	detailsPattern     = regexp.MustCompile(`(?si)<details[^>]*>.*?</details>`)
	summaryPattern     = regexp.MustCompile(`(?si)<summary[^>]*>(.*?)</summary>`)
	paragraphPattern   = regexp.MustCompile(`(?si)<p[^>]*>.*?</p>`)
	excessNewlines     = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips known automation boilerplate from a comment body.
// The rewrites are order-sensitive:
//
//  1. HTML-comment regions (including multi-line ones)
//  2. <details> blocks whose <summary> mentions "Additional Locations"
//  3. <p> blocks linking to the automation vendor's domain
//  4. runs of 3+ newlines collapsed to exactly 2
//  5. leading/trailing whitespace trimmed
//
// Empty input passes through unchanged. Sanitize is idempotent:
// re-applying it to its own output yields the same output.
func Sanitize(body string) string {
	if body == "" {
		return body
	}

	body = htmlCommentPattern.ReplaceAllString(body, "")

	body = detailsPattern.ReplaceAllStringFunc(body, func(block string) string {
		m := summaryPattern.FindStringSubmatch(block)
		if m != nil && strings.Contains(strings.ToLower(m[1]), "additional locations") {
			return ""
		}
		return block
	})

	body = paragraphPattern.ReplaceAllStringFunc(body, func(block string) string {
		if strings.Contains(strings.ToLower(block), vendorDomain) {
			return ""
		}
		return block
	})

	body = excessNewlines.ReplaceAllString(body, "\n\n")

	return strings.TrimSpace(body)
}
