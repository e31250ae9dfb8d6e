package model

import (
	"fmt"
	"sort"
)

// Entity is a versioned safety-model element: a fault-tree node, an FMEA
// row, a requirement, or an architecture element. Identity is carried by
// ID, which is stable across versions; everything else may change between
// snapshots.
type Entity struct {
	ID       string
	Kind     EntityKind
	Name     string
	Fields   map[string]string // e.g. "description", "rationale", "asil", "fit"
	ParentID string            // Owning entity, "" for roots.

	// Allocations holds the IDs of requirements allocated to this entity.
	// Relations are identifier-based; entities never hold pointers to each
	// other so snapshots stay comparable by value.
	Allocations []string
}

// Field returns the named field value, or "" when unset.
func (e Entity) Field(name string) string {
	return e.Fields[name]
}

// Link is an edge between two entities, identified by the
// (source, target, kind) triple. Links carry no fields of their own.
type Link struct {
	SourceID string
	TargetID string
	Kind     LinkKind
}

// Snapshot is the immutable state of a model at one version. Callers must
// not mutate a snapshot after handing it to the diff engine or recording
// it as an approved baseline.
type Snapshot struct {
	Version  string
	Entities map[string]Entity
	Links    []Link
}

// EntityIDs returns all entity identifiers in ascending order. Diff output
// ordering is derived from this, so it must stay deterministic.
func (s Snapshot) EntityIDs() []string {
	ids := make([]string, 0, len(s.Entities))
	for id := range s.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the snapshot's referential invariants: every link
// endpoint and every requirement allocation must resolve to an entity in
// the same snapshot. A failure means the entity store handed out a
// corrupt snapshot and is wrapped in ErrMalformedSnapshot by callers.
func (s Snapshot) Validate() error {
	for _, l := range s.Links {
		if _, ok := s.Entities[l.SourceID]; !ok {
			return fmt.Errorf("link %s->%s: dangling source", l.SourceID, l.TargetID)
		}
		if _, ok := s.Entities[l.TargetID]; !ok {
			return fmt.Errorf("link %s->%s: dangling target", l.SourceID, l.TargetID)
		}
	}
	for _, id := range s.EntityIDs() {
		for _, reqID := range s.Entities[id].Allocations {
			if _, ok := s.Entities[reqID]; !ok {
				return fmt.Errorf("entity %s: allocation references missing requirement %s", id, reqID)
			}
		}
	}
	return nil
}
