package application

import (
	"fmt"
	"sort"

	"github.com/capeksafety/reviewkit/internal/domain/model"
)

// Diff compares two snapshots and returns the ordered change-set between
// them: added entities, removed entities, modified entities by ascending
// identifier, added links, removed links, then requirement-allocation
// changes. If scope is non-nil, only entities inside it (and links whose
// endpoints both lie inside it) are compared. The ordering is fully
// deterministic, so repeated comparisons of the same snapshots are
// byte-identical, which the export pipeline and tests rely on.
//
// Both entry points of the application share this function: the automatic
// compare-to-last-approved pass on review open, and the explicit
// "Compare Versions" action. Snapshots failing their referential
// invariants yield ErrMalformedSnapshot and no partial change-set.
func Diff(oldSnap, newSnap model.Snapshot, scope *model.ReviewScope) (model.ChangeSet, error) {
	if err := oldSnap.Validate(); err != nil {
		return model.ChangeSet{}, fmt.Errorf("%w: old %s: %v", model.ErrMalformedSnapshot, oldSnap.Version, err)
	}
	if err := newSnap.Validate(); err != nil {
		return model.ChangeSet{}, fmt.Errorf("%w: new %s: %v", model.ErrMalformedSnapshot, newSnap.Version, err)
	}

	inScope := func(id string) bool {
		return scope == nil || scope.Contains(id)
	}

	cs := model.ChangeSet{OldVersion: oldSnap.Version, NewVersion: newSnap.Version}

	// Partition entity identifiers into added, removed, and candidates
	// present in both snapshots.
	var added, removed, common []string
	for _, id := range unionIDs(oldSnap, newSnap) {
		if !inScope(id) {
			continue
		}
		_, inOld := oldSnap.Entities[id]
		_, inNew := newSnap.Entities[id]
		switch {
		case inNew && !inOld:
			added = append(added, id)
		case inOld && !inNew:
			removed = append(removed, id)
		default:
			common = append(common, id)
		}
	}

	for _, id := range added {
		cs.Changes = append(cs.Changes, entityChange(model.ChangeOpAdded, newSnap.Entities[id]))
	}
	for _, id := range removed {
		cs.Changes = append(cs.Changes, entityChange(model.ChangeOpRemoved, oldSnap.Entities[id]))
	}
	for _, id := range common {
		oldE, newE := oldSnap.Entities[id], newSnap.Entities[id]
		fields := diffFields(oldE, newE)
		if len(fields) == 0 {
			continue
		}
		change := entityChange(model.ChangeOpModified, newE)
		change.Fields = fields
		cs.Changes = append(cs.Changes, change)
	}

	addedLinks, removedLinks := diffLinks(oldSnap.Links, newSnap.Links, inScope)
	for _, l := range addedLinks {
		cs.Changes = append(cs.Changes, model.Change{Op: model.ChangeOpAdded, Target: model.ChangeTargetLink, Link: l})
	}
	for _, l := range removedLinks {
		cs.Changes = append(cs.Changes, model.Change{Op: model.ChangeOpRemoved, Target: model.ChangeTargetLink, Link: l})
	}

	// Allocation changes are reported per entity as a set difference,
	// separately from field changes.
	for _, id := range common {
		oldE, newE := oldSnap.Entities[id], newSnap.Entities[id]
		addedReqs, removedReqs := diffStringSets(oldE.Allocations, newE.Allocations)
		for _, req := range addedReqs {
			cs.Changes = append(cs.Changes, allocationChange(model.ChangeOpAdded, id, req))
		}
		for _, req := range removedReqs {
			cs.Changes = append(cs.Changes, allocationChange(model.ChangeOpRemoved, id, req))
		}
	}

	return cs, nil
}

// unionIDs merges the entity identifiers of both snapshots, ascending.
func unionIDs(a, b model.Snapshot) []string {
	seen := make(map[string]struct{}, len(a.Entities)+len(b.Entities))
	var ids []string
	for id := range a.Entities {
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for id := range b.Entities {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func entityChange(op model.ChangeOp, e model.Entity) model.Change {
	return model.Change{
		Op:         op,
		Target:     model.ChangeTargetEntity,
		EntityID:   e.ID,
		EntityKind: e.Kind,
		EntityName: e.Name,
	}
}

func allocationChange(op model.ChangeOp, entityID, reqID string) model.Change {
	return model.Change{
		Op:       op,
		Target:   model.ChangeTargetAllocation,
		EntityID: entityID,
		ReqID:    reqID,
	}
}

// comparableFields flattens an entity into the key set used for field
// comparison. Name, kind, and parent take part alongside the free-form
// field mapping under reserved keys.
func comparableFields(e model.Entity) map[string]string {
	m := make(map[string]string, len(e.Fields)+3)
	for k, v := range e.Fields {
		m[k] = v
	}
	m["kind"] = string(e.Kind)
	if e.Name != "" {
		m["name"] = e.Name
	}
	if e.ParentID != "" {
		m["parent"] = e.ParentID
	}
	return m
}

// diffFields compares two versions of an entity key by key and returns
// the text-changed fields in ascending field-name order.
func diffFields(oldE, newE model.Entity) []model.FieldChange {
	oldFields := comparableFields(oldE)
	newFields := comparableFields(newE)

	keys := make(map[string]struct{}, len(oldFields)+len(newFields))
	for k := range oldFields {
		keys[k] = struct{}{}
	}
	for k := range newFields {
		keys[k] = struct{}{}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	var changes []model.FieldChange
	for _, name := range names {
		oldVal, newVal := oldFields[name], newFields[name]
		if oldVal == newVal {
			continue
		}
		changes = append(changes, model.FieldChange{Field: name, Diff: DiffText(oldVal, newVal)})
	}
	return changes
}

// linkKey orders links for deterministic output.
func linkKey(l model.Link) string {
	return l.SourceID + "\x00" + l.TargetID + "\x00" + string(l.Kind)
}

// diffLinks compares links by (source, target, kind) presence. Links
// carry no fields, so there is no modified case. A link is in scope when
// both endpoints are.
func diffLinks(oldLinks, newLinks []model.Link, inScope func(string) bool) (added, removed []model.Link) {
	oldSet := make(map[string]model.Link, len(oldLinks))
	for _, l := range oldLinks {
		oldSet[linkKey(l)] = l
	}
	newSet := make(map[string]model.Link, len(newLinks))
	for _, l := range newLinks {
		newSet[linkKey(l)] = l
	}

	var addedKeys, removedKeys []string
	for k, l := range newSet {
		if !inScope(l.SourceID) || !inScope(l.TargetID) {
			continue
		}
		if _, ok := oldSet[k]; !ok {
			addedKeys = append(addedKeys, k)
		}
	}
	for k, l := range oldSet {
		if !inScope(l.SourceID) || !inScope(l.TargetID) {
			continue
		}
		if _, ok := newSet[k]; !ok {
			removedKeys = append(removedKeys, k)
		}
	}
	sort.Strings(addedKeys)
	sort.Strings(removedKeys)

	for _, k := range addedKeys {
		added = append(added, newSet[k])
	}
	for _, k := range removedKeys {
		removed = append(removed, oldSet[k])
	}
	return added, removed
}

// diffStringSets returns the elements only in b (added) and only in a
// (removed), each ascending.
func diffStringSets(a, b []string) (added, removed []string) {
	inA := make(map[string]struct{}, len(a))
	for _, s := range a {
		inA[s] = struct{}{}
	}
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	for s := range inB {
		if _, ok := inA[s]; !ok {
			added = append(added, s)
		}
	}
	for s := range inA {
		if _, ok := inB[s]; !ok {
			removed = append(removed, s)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
