package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

const (
	peopleCollection    = "people"
	companiesCollection = "companies"
)

// enrich fetches the recording's author and subject concurrently and returns
// a copy with both attached. Both fetches must complete before formatting can
// start; the first failure cancels the other and the caller skips the record.
func (uc *SyncUseCase) enrich(ctx context.Context, rec *model.Recording) (*model.Recording, error) {
	var author *model.Author
	var subject *model.Subject

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		a, err := uc.crm.GetUser(ctx, rec.AuthorID)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch author",
				goerr.V("recordingID", rec.ID), goerr.V("authorID", rec.AuthorID))
		}
		author = a
		return nil
	})

	eg.Go(func() error {
		s, err := uc.resolveSubject(ctx, rec.SubjectID, rec.SubjectType)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve subject",
				goerr.V("recordingID", rec.ID), goerr.V("subjectID", rec.SubjectID))
		}
		subject = s
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return rec.WithEnrichment(author, subject), nil
}

// resolveSubject maps the subject type to its collection and fetches the
// entity. A Party subject may actually be a company record misfiled as a
// person, so a failed people fetch is probed once against companies before
// the failure surfaces. No other collection gets a second attempt.
func (uc *SyncUseCase) resolveSubject(ctx context.Context, id int64, subjectType types.SubjectType) (*model.Subject, error) {
	collection := subjectType.Collection()

	subject, err := uc.crm.GetSubject(ctx, collection, id)
	if err == nil {
		return subject, nil
	}
	if collection != peopleCollection {
		return nil, err
	}

	subject, companiesErr := uc.crm.GetSubject(ctx, companiesCollection, id)
	if companiesErr != nil {
		return nil, goerr.Wrap(err, "subject found in neither people nor companies",
			goerr.V("subjectID", id), goerr.V("companiesError", companiesErr.Error()))
	}
	return subject, nil
}
