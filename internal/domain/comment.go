package domain

import "time"

// CommentKind identifies which of the three PR discussion streams an entity
// came from.
type CommentKind string

const (
	// KindInline is a review comment anchored to a file and line in the diff.
	KindInline CommentKind = "inline"

	// KindGeneral is a conversation comment on the PR itself.
	KindGeneral CommentKind = "general"

	// KindReview is a submitted review verdict (approve, request changes, ...).
	KindReview CommentKind = "review"
)

// Location is the file position of an inline comment.
type Location struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// Reply is a response inside an inline comment thread. Replies are flattened
// one level: a Reply never carries replies of its own.
type Reply struct {
	ID          int64     `json:"id"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
	IsAutomated bool      `json:"isAutomated"`
}

// Comment is the unified discussion entity produced by normalization.
// Comments are built fresh on every fetch cycle and never mutated after
// construction.
type Comment struct {
	ID          int64       `json:"id"`
	Kind        CommentKind `json:"kind"`
	Author      string      `json:"author"`
	IsAutomated bool        `json:"isAutomated"`

	// Location is set only for KindInline.
	Location *Location `json:"location,omitempty"`

	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Replies is populated only for KindInline.
	Replies []Reply `json:"replies,omitempty"`

	HasHumanReply bool `json:"hasHumanReply"`
	HasAnyReply   bool `json:"hasAnyReply"`

	// IsResolved is true only for review verdicts in a terminal state
	// (approved or dismissed). Inline and general comments are never
	// resolved; the API's thread-resolution signal is not consulted.
	IsResolved bool `json:"isResolved"`

	URL string `json:"url"`
}
