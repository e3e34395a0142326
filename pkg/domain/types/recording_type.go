package types

// RecordingType represents the kind of CRM activity record
type RecordingType string

const (
	RecordingTypeEmail   RecordingType = "Email"
	RecordingTypeNote    RecordingType = "Note"
	RecordingTypeComment RecordingType = "Comment"
)

// AllRecordingTypes returns all recording types eligible for notification
func AllRecordingTypes() []RecordingType {
	return []RecordingType{
		RecordingTypeEmail,
		RecordingTypeNote,
		RecordingTypeComment,
	}
}

// IsNotifiable checks if the recording type should produce a notification
func (t RecordingType) IsNotifiable() bool {
	switch t {
	case RecordingTypeEmail,
		RecordingTypeNote,
		RecordingTypeComment:
		return true
	default:
		return false
	}
}

// Label returns the human-readable label used in the message text.
// Unrecognized types fall back to "a note"; the filter rejects them before
// formatting, but the formatter must not fail on them either.
func (t RecordingType) Label() string {
	switch t {
	case RecordingTypeEmail:
		return "an email"
	case RecordingTypeComment:
		return "a comment"
	case RecordingTypeNote:
		return "a note"
	default:
		return "a note"
	}
}

// Collection returns the CRM collection path for this recording type,
// used to build canonical links (e.g. "emails/123")
func (t RecordingType) Collection() string {
	switch t {
	case RecordingTypeEmail:
		return "emails"
	case RecordingTypeComment:
		return "comments"
	default:
		return "notes"
	}
}

// String returns the string representation of the recording type
func (t RecordingType) String() string {
	return string(t)
}
