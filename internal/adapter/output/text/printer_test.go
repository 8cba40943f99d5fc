package text_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmorris/prwatch/internal/adapter/output/text"
	"github.com/gmorris/prwatch/internal/domain"
	"github.com/gmorris/prwatch/internal/usecase/watch"
)

func sample() domain.Comment {
	return domain.Comment{
		ID:          1,
		Kind:        domain.KindInline,
		Author:      "coderabbitai[bot]",
		IsAutomated: true,
		Location:    &domain.Location{Path: "pkg/server.go", Line: 42},
		Body:        "Possible nil dereference.\nAdd a guard.",
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Replies: []domain.Reply{
			{ID: 2, Author: "alice", Body: "fixed", IsAutomated: false},
		},
		HasAnyReply:   true,
		HasHumanReply: true,
		URL:           "https://example.com/c/1",
	}
}

func TestPrintComments_RendersAllSections(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, false)

	require.NoError(t, printer.PrintComments([]domain.Comment{sample()}))
	out := buf.String()

	assert.Contains(t, out, "1 comment(s)")
	assert.Contains(t, out, "[Inline]")
	assert.Contains(t, out, "coderabbitai[bot] (automated)")
	assert.Contains(t, out, "pkg/server.go:42")
	assert.Contains(t, out, "Possible nil dereference.")
	assert.Contains(t, out, "  Add a guard.")
	assert.Contains(t, out, "1 reply(ies), 1 from humans")
	assert.Contains(t, out, "https://example.com/c/1")
}

func TestPrintComments_Empty(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, false)

	require.NoError(t, printer.PrintComments(nil))
	assert.Contains(t, buf.String(), "No comments match")
}

func TestPrintComments_NoColorMeansNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, false)

	require.NoError(t, printer.PrintComments([]domain.Comment{sample()}))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPrintComments_ColorEmitsEscapes(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, true)

	require.NoError(t, printer.PrintComments([]domain.Comment{sample()}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestPrintComments_ResolvedMarker(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, false)

	c := domain.Comment{ID: 1, Kind: domain.KindReview, Author: "alice", Body: "LGTM", IsResolved: true}
	require.NoError(t, printer.PrintComments([]domain.Comment{c}))

	assert.Contains(t, buf.String(), "[Review]")
	assert.Contains(t, buf.String(), "resolved")
}

func TestPrintOutcome_Reporting(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, false)

	err := printer.PrintOutcome(watch.Outcome{
		State:   watch.StateReporting,
		New:     []domain.Comment{sample()},
		Polls:   3,
		Tracked: 5,
	})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "New activity:")
	assert.Contains(t, out, "1 new comment(s) after 3 poll(s)")
	assert.Contains(t, out, "[Inline]")
}

func TestPrintOutcome_IdleTimeout(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, false)

	err := printer.PrintOutcome(watch.Outcome{State: watch.StateIdleTimeout, Polls: 20})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No new activity after 20 poll(s)")
}

func TestPrintReplyPosted(t *testing.T) {
	var buf bytes.Buffer
	printer := text.NewPrinter(&buf, false)

	require.NoError(t, printer.PrintReplyPosted("https://example.com/c/900"))
	line := strings.TrimSpace(buf.String())
	assert.Equal(t, "Reply posted: https://example.com/c/900", line)
}
