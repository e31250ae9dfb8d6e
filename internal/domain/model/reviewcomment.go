package model

import (
	"fmt"
	"time"
)

// Comment is a single remark on a scoped model entity within a review
// session. Resolution is append-only: once resolved, text and explanation
// are retained immutable, and reopening creates a new comment pointing
// back at the resolved one via ReopenedFromID.
type Comment struct {
	ID       string
	TargetID string // Entity identifier, must lie inside the session scope.
	Author   string
	Text     string

	// ReqID and Field qualify the target when the remark concerns a
	// specific allocated requirement or FMEA column rather than the
	// entity as a whole.
	ReqID string
	Field string

	Resolved       bool
	Resolution     string // Explanation, present iff Resolved.
	ReopenedFromID string // ID of the resolved comment this one reopens, "" otherwise.
	CreatedAt      time.Time
}

// TargetLabel renders the target with its qualifier for listing, e.g.
// "N7 [Req SR-3]" or "N7 [FMEA severity]".
func (c Comment) TargetLabel() string {
	switch {
	case c.ReqID != "":
		return fmt.Sprintf("%s [Req %s]", c.TargetID, c.ReqID)
	case c.Field != "":
		return fmt.Sprintf("%s [FMEA %s]", c.TargetID, c.Field)
	default:
		return c.TargetID
	}
}
