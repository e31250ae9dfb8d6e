package model

import "fmt"

// TextDiff reports a single-span edit to a text field. The old value is
// Prefix+Deleted+Suffix and the new value is Prefix+Inserted+Suffix, so
// a viewer can mark the deleted and inserted spans without recomputing
// anything.
type TextDiff struct {
	Prefix   string
	Deleted  string
	Inserted string
	Suffix   string
}

// Old reconstructs the original field value.
func (d TextDiff) Old() string { return d.Prefix + d.Deleted + d.Suffix }

// New reconstructs the updated field value.
func (d TextDiff) New() string { return d.Prefix + d.Inserted + d.Suffix }

// FieldChange is one text-changed field on a modified entity.
type FieldChange struct {
	Field string
	Diff  TextDiff
}

// Change is one record in a change-set: an entity added, removed or
// modified, a link added or removed, or a requirement allocation added
// or removed. Exactly the fields relevant to the target kind are set.
type Change struct {
	Op     ChangeOp
	Target ChangeTarget

	// Entity changes.
	EntityID   string
	EntityKind EntityKind
	EntityName string
	Fields     []FieldChange // Modified entities only, field name ascending.

	// Link changes.
	Link Link

	// Allocation changes: requirement ReqID (un)allocated to EntityID.
	ReqID string
}

// ChangeSet is the ordered, deterministic difference between two
// snapshots: added entities, removed entities, modified entities by
// ascending identifier, added links, removed links, allocation changes.
// Identical inputs always produce an identical sequence.
type ChangeSet struct {
	OldVersion string
	NewVersion string
	Changes    []Change
}

// Empty reports whether the two snapshots compared equal.
func (cs ChangeSet) Empty() bool { return len(cs.Changes) == 0 }

// ByOp returns the changes matching op and target.
func (cs ChangeSet) ByOp(op ChangeOp, target ChangeTarget) []Change {
	var out []Change
	for _, c := range cs.Changes {
		if c.Op == op && c.Target == target {
			out = append(out, c)
		}
	}
	return out
}

// Summary renders the change-set as human-readable lines for the export
// boundary (email bodies, CSV rows, the compare log).
func (cs ChangeSet) Summary() []string {
	lines := make([]string, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		lines = append(lines, c.describe())
	}
	return lines
}

func (c Change) describe() string {
	switch c.Target {
	case ChangeTargetLink:
		verb := "Added"
		if c.Op == ChangeOpRemoved {
			verb = "Removed"
		}
		return fmt.Sprintf("%s %s link %s -> %s", verb, c.Link.Kind, c.Link.SourceID, c.Link.TargetID)
	case ChangeTargetAllocation:
		verb := "Allocated"
		if c.Op == ChangeOpRemoved {
			verb = "Deallocated"
		}
		return fmt.Sprintf("%s requirement %s on %s", verb, c.ReqID, c.EntityID)
	default:
		name := c.EntityName
		if name == "" {
			name = c.EntityID
		}
		switch c.Op {
		case ChangeOpAdded:
			return fmt.Sprintf("Added %s %s", c.EntityKind, name)
		case ChangeOpRemoved:
			return fmt.Sprintf("Removed %s %s", c.EntityKind, name)
		default:
			s := fmt.Sprintf("Modified %s %s:", c.EntityKind, name)
			for _, f := range c.Fields {
				s += fmt.Sprintf(" %s %q -> %q;", f.Field, f.Diff.Old(), f.Diff.New())
			}
			return s
		}
	}
}
