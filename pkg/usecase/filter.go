package usecase

import (
	"time"

	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/domain/types"
)

// qualifies decides whether a fetched recording should be posted. A recording
// qualifies only if its type is notifiable, its visibility matches the notify
// policy, and it was created strictly after the checkpoint.
func (uc *SyncUseCase) qualifies(rec *model.Recording, checkpoint time.Time) bool {
	if !rec.Type.IsNotifiable() {
		return false
	}

	visible := (rec.VisibleTo == types.VisibilityEveryone && uc.notifyCfg.ShowEveryone) ||
		uc.notifyCfg.GroupVisible(rec.GroupID)
	if !visible {
		return false
	}

	// Strictly after: a recording created exactly at the checkpoint was
	// already posted by the previous cycle. Edited recordings are never
	// re-posted because the gate is CreatedAt, not UpdatedAt.
	return rec.CreatedAt.After(checkpoint)
}
