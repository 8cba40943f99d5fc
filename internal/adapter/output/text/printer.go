// Package text renders command results for a human reading a terminal.
package text

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gmorris/prwatch/internal/domain"
	"github.com/gmorris/prwatch/internal/usecase/watch"
)

// Printer writes comments and watch outcomes as indented plain text.
// Colors are per-instance so concurrent printers never share state.
type Printer struct {
	out io.Writer

	kindColor   *color.Color
	authorColor *color.Color
	metaColor   *color.Color
	stateColor  *color.Color

	caser cases.Caser
}

// NewPrinter creates a printer targeting out. When enableColor is false
// all color sequences are suppressed.
func NewPrinter(out io.Writer, enableColor bool) *Printer {
	p := &Printer{
		out:         out,
		kindColor:   color.New(color.FgCyan, color.Bold),
		authorColor: color.New(color.FgYellow),
		metaColor:   color.New(color.Faint),
		stateColor:  color.New(color.FgGreen, color.Bold),
		caser:       cases.Title(language.English),
	}
	// Force the per-instance setting either way so the package-global TTY
	// detection never overrides the caller's decision.
	for _, c := range []*color.Color{p.kindColor, p.authorColor, p.metaColor, p.stateColor} {
		if enableColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// PrintComments renders the snapshot, newest first as delivered.
func (p *Printer) PrintComments(comments []domain.Comment) error {
	if len(comments) == 0 {
		_, err := fmt.Fprintln(p.out, "No comments match the current filters.")
		return err
	}

	if _, err := fmt.Fprintf(p.out, "%d comment(s)\n\n", len(comments)); err != nil {
		return err
	}
	for _, c := range comments {
		if err := p.printComment(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printComment(c domain.Comment) error {
	label := p.caser.String(string(c.Kind))
	author := c.Author
	if c.IsAutomated {
		author += " (automated)"
	}

	var header strings.Builder
	header.WriteString(p.kindColor.Sprintf("[%s]", label))
	header.WriteString(" ")
	header.WriteString(p.authorColor.Sprint(author))
	header.WriteString(p.metaColor.Sprintf(" · %s", c.CreatedAt.Format(time.RFC3339)))
	if c.IsResolved {
		header.WriteString(p.stateColor.Sprint(" · resolved"))
	}
	if _, err := fmt.Fprintln(p.out, header.String()); err != nil {
		return err
	}

	if c.Location != nil {
		if _, err := fmt.Fprintln(p.out, p.metaColor.Sprintf("  %s:%d", c.Location.Path, c.Location.Line)); err != nil {
			return err
		}
	}

	for _, line := range strings.Split(c.Body, "\n") {
		if _, err := fmt.Fprintf(p.out, "  %s\n", line); err != nil {
			return err
		}
	}

	if len(c.Replies) > 0 {
		human := 0
		for _, r := range c.Replies {
			if !r.IsAutomated {
				human++
			}
		}
		if _, err := fmt.Fprintln(p.out, p.metaColor.Sprintf("  ↳ %d reply(ies), %d from humans", len(c.Replies), human)); err != nil {
			return err
		}
	}

	if c.URL != "" {
		if _, err := fmt.Fprintln(p.out, p.metaColor.Sprintf("  %s", c.URL)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(p.out)
	return err
}

// PrintOutcome renders a watch terminal result.
func (p *Printer) PrintOutcome(outcome watch.Outcome) error {
	switch outcome.State {
	case watch.StateReporting:
		if _, err := fmt.Fprintf(p.out, "%s %d new comment(s) after %d poll(s)\n\n",
			p.stateColor.Sprint("New activity:"), len(outcome.New), outcome.Polls); err != nil {
			return err
		}
		for _, c := range outcome.New {
			if err := p.printComment(c); err != nil {
				return err
			}
		}
		return nil
	case watch.StateIdleTimeout:
		_, err := fmt.Fprintf(p.out, "No new activity after %d poll(s); giving up.\n", outcome.Polls)
		return err
	default:
		_, err := fmt.Fprintf(p.out, "Watch finished in state %q.\n", outcome.State)
		return err
	}
}

// PrintReplyPosted confirms a reply operation with its permalink.
func (p *Printer) PrintReplyPosted(url string) error {
	_, err := fmt.Fprintf(p.out, "%s %s\n", p.stateColor.Sprint("Reply posted:"), url)
	return err
}
