package application

import (
	"fmt"

	"github.com/capeksafety/reviewkit/internal/domain/model"
)

// ModelStore holds the working snapshot of the safety model. The editor
// replaces the snapshot wholesale after each edit batch; the review and
// diff components only ever read it.
type ModelStore struct {
	current model.Snapshot
}

// NewModelStore validates and adopts the initial snapshot.
func NewModelStore(snap model.Snapshot) (*ModelStore, error) {
	store := &ModelStore{}
	if err := store.SetSnapshot(snap); err != nil {
		return nil, err
	}
	return store, nil
}

// CurrentSnapshot returns the working snapshot. Callers must treat it as
// read-only.
func (m *ModelStore) CurrentSnapshot() model.Snapshot {
	return m.current
}

// SetSnapshot replaces the working snapshot after checking its
// referential invariants; a failure leaves the previous snapshot in
// place.
func (m *ModelStore) SetSnapshot(snap model.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedSnapshot, err)
	}
	if snap.Entities == nil {
		snap.Entities = map[string]model.Entity{}
	}
	m.current = snap
	return nil
}
