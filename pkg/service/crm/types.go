package crm

import (
	"context"
	"encoding/xml"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/domain/types"
)

// Service provides read access to the CRM XML API
type Service interface {
	// ListRecordings retrieves all activity records created or updated
	// since the given time. The CRM applies the filter server-side.
	ListRecordings(ctx context.Context, since time.Time) ([]*model.Recording, error)

	// GetUser retrieves the CRM user who authored a recording
	GetUser(ctx context.Context, id int64) (*model.Author, error)

	// GetSubject retrieves a subject entity from the given collection
	// (people, companies, deals or kases)
	GetSubject(ctx context.Context, collection string, id int64) (*model.Subject, error)
}

// ErrTagFetch marks errors raised while fetching from the CRM
var ErrTagFetch = goerr.NewTag("crm_fetch")

// recordingsEnvelope is the wire form of GET /recordings.xml
type recordingsEnvelope struct {
	XMLName    xml.Name       `xml:"records"`
	Recordings []recordingXML `xml:"recording"`
}

type recordingXML struct {
	ID          int64  `xml:"id"`
	Type        string `xml:"type"`
	Title       string `xml:"title"`
	Body        string `xml:"body"`
	AuthorID    int64  `xml:"author-id"`
	SubjectID   int64  `xml:"subject-id"`
	SubjectType string `xml:"subject-type"`
	SubjectName string `xml:"subject-name"`
	VisibleTo   string `xml:"visible-to"`
	GroupID     int64  `xml:"group-id"`
	CreatedAt   string `xml:"created-at"`
	UpdatedAt   string `xml:"updated-at"`
}

func (r *recordingXML) toModel() (*model.Recording, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid created-at", goerr.V("id", r.ID), goerr.V("value", r.CreatedAt))
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid updated-at", goerr.V("id", r.ID), goerr.V("value", r.UpdatedAt))
	}

	return &model.Recording{
		ID:          r.ID,
		Type:        types.RecordingType(r.Type),
		Title:       r.Title,
		Body:        r.Body,
		AuthorID:    r.AuthorID,
		SubjectID:   r.SubjectID,
		SubjectType: types.SubjectType(r.SubjectType),
		SubjectName: r.SubjectName,
		VisibleTo:   types.Visibility(r.VisibleTo),
		GroupID:     r.GroupID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// userXML is the wire form of GET /users/{id}.xml
type userXML struct {
	XMLName xml.Name `xml:"user"`
	ID      int64    `xml:"id"`
	Name    string   `xml:"name"`
}

// subjectXML matches any subject element (person, company, deal, kase);
// the root element name differs per collection so it is left unbound
type subjectXML struct {
	ID   int64  `xml:"id"`
	Name string `xml:"name"`
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
