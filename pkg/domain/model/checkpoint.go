package model

import "time"

// Checkpoint marks the boundary of already-synced recordings. Position is the
// maximum UpdatedAt seen across a completed cycle's fetch; SyncedAt records
// when the cycle ran.
type Checkpoint struct {
	Position time.Time `firestore:"position" json:"position"`
	SyncedAt time.Time `firestore:"synced_at" json:"synced_at"`
}

// Advanced returns a new checkpoint at the given position, never moving
// backwards from the current one.
func (c Checkpoint) Advanced(position, now time.Time) Checkpoint {
	if position.Before(c.Position) {
		position = c.Position
	}
	return Checkpoint{
		Position: position,
		SyncedAt: now,
	}
}
