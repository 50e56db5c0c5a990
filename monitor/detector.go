package monitor

import (
	"bytes"
	"encoding/json"

	"pinquiz/models"
)

// ChangeDetector decides whether a freshly polled snapshot differs
// from the last one delivered. It is a strategy so the snapshot diff
// can later be swapped for an event subscription without touching the
// game logic.
type ChangeDetector interface {
	Changed(prev, next *models.Game) bool
}

// SnapshotDetector compares serialized snapshots: a change anywhere in
// the record counts, field by field.
type SnapshotDetector struct{}

func (SnapshotDetector) Changed(prev, next *models.Game) bool {
	if prev == nil || next == nil {
		return prev != next
	}

	a, errA := json.Marshal(prev)
	b, errB := json.Marshal(next)
	if errA != nil || errB != nil {
		// Treat an unserializable snapshot as changed rather than
		// swallowing an update.
		return true
	}
	return !bytes.Equal(a, b)
}
