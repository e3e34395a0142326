package model

import (
	"strings"
	"time"

	"github.com/relaymill/towncrier/pkg/domain/types"
)

// Recording represents a CRM activity record (email, note or comment).
// Fields mirror the CRM wire representation; Author and Subject are attached
// by the enrichment step and are nil as fetched.
type Recording struct {
	ID          int64
	Type        types.RecordingType
	Title       string
	Body        string
	AuthorID    int64
	SubjectID   int64
	SubjectType types.SubjectType
	SubjectName string
	VisibleTo   types.Visibility
	GroupID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author  *Author
	Subject *Subject
}

// WithEnrichment returns a copy of the recording with author and subject
// attached. The original is left untouched so concurrent enrichment of
// distinct recordings never shares mutable state.
func (r *Recording) WithEnrichment(author *Author, subject *Subject) *Recording {
	enriched := *r
	enriched.Author = author
	enriched.Subject = subject
	return &enriched
}

// Author represents the CRM user who created a recording
type Author struct {
	ID   int64
	Name string
}

// FirstName returns the first whitespace-delimited token of the author name
func (a *Author) FirstName() string {
	fields := strings.Fields(a.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Subject represents the CRM entity a recording is about. Only the ID is
// needed downstream; the display name comes from the recording itself.
type Subject struct {
	ID   int64
	Name string
}
