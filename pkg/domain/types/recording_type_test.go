package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/relaymill/towncrier/pkg/domain/types"
)

func TestRecordingType(t *testing.T) {
	gt.Bool(t, types.RecordingTypeEmail.IsNotifiable()).True()
	gt.Bool(t, types.RecordingTypeNote.IsNotifiable()).True()
	gt.Bool(t, types.RecordingTypeComment.IsNotifiable()).True()
	gt.Bool(t, types.RecordingType("Task").IsNotifiable()).False()
	gt.Bool(t, types.RecordingType("").IsNotifiable()).False()

	gt.Value(t, types.RecordingTypeEmail.Label()).Equal("an email")
	gt.Value(t, types.RecordingTypeComment.Label()).Equal("a comment")
	gt.Value(t, types.RecordingTypeNote.Label()).Equal("a note")
	gt.Value(t, types.RecordingType("Task").Label()).Equal("a note")

	gt.Value(t, types.RecordingTypeEmail.Collection()).Equal("emails")
	gt.Value(t, types.RecordingTypeComment.Collection()).Equal("comments")
	gt.Value(t, types.RecordingTypeNote.Collection()).Equal("notes")
}

func TestSubjectType(t *testing.T) {
	gt.Value(t, types.SubjectTypeParty.Collection()).Equal("people")
	gt.Value(t, types.SubjectTypeDeal.Collection()).Equal("deals")
	gt.Value(t, types.SubjectTypeKase.Collection()).Equal("kases")

	// Unknown subject types resolve to people for the companies fallback
	gt.Value(t, types.SubjectType("Custom").Collection()).Equal("people")
}
