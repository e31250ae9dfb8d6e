package model

import (
	"sort"
	"time"
)

// Participant is a named member of a review session.
type Participant struct {
	Name  string
	Email string
	Role  Role
	Done  bool // Reviewer has marked their pass complete.
}

// ReviewSession is a single peer or joint review over a frozen scope of
// model entities. Sessions are owned by the registry and mutated only
// through its state-machine transitions.
type ReviewSession struct {
	ID              string
	Name            string // Unique across the registry.
	Description     string
	Kind            ReviewKind
	Scope           ReviewScope
	Participants    []Participant
	DueDate         time.Time
	Approved        bool
	BaselineVersion string // Version marker of the snapshot the review opened against.
}

// ReviewScope is the set of entity identifiers visible to a review,
// frozen when the session is created.
type ReviewScope struct {
	EntityIDs map[string]struct{}
}

// NewReviewScope copies ids into a frozen scope.
func NewReviewScope(ids []string) ReviewScope {
	scope := ReviewScope{EntityIDs: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		scope.EntityIDs[id] = struct{}{}
	}
	return scope
}

// Contains reports whether the entity identifier is inside the scope.
func (s ReviewScope) Contains(id string) bool {
	_, ok := s.EntityIDs[id]
	return ok
}

// IDs returns the scope members in ascending order.
func (s ReviewScope) IDs() []string {
	ids := make([]string, 0, len(s.EntityIDs))
	for id := range s.EntityIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Status derives the lifecycle state at the given instant. Approval is
// terminal; otherwise a session past its due date is read-only until a
// moderator extends it.
func (r ReviewSession) Status(now time.Time) ReviewStatus {
	if r.Approved {
		return ReviewStatusApproved
	}
	if !r.DueDate.IsZero() && !now.Before(r.DueDate) {
		return ReviewStatusReadOnly
	}
	return ReviewStatusOpen
}

// RoleOf returns the role of the named participant, or false when the
// name is not part of the session.
func (r ReviewSession) RoleOf(name string) (Role, bool) {
	for _, p := range r.Participants {
		if p.Name == name {
			return p.Role, true
		}
	}
	return "", false
}

// AllReviewersDone reports whether every reviewer has marked complete.
func (r ReviewSession) AllReviewersDone() bool {
	for _, p := range r.Participants {
		if p.Role == RoleReviewer && !p.Done {
			return false
		}
	}
	return true
}

// ApprovedVersion is one entry of the approved-model history: the
// snapshot frozen at approval time, the session that approved it, and
// when. The history feeds the diff engine's previous-approved baseline.
type ApprovedVersion struct {
	Snapshot   Snapshot
	SessionID  string
	ApprovedAt time.Time
}

// CountRole returns how many participants hold the given role.
func (r ReviewSession) CountRole(role Role) int {
	n := 0
	for _, p := range r.Participants {
		if p.Role == role {
			n++
		}
	}
	return n
}
