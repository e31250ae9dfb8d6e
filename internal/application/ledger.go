package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/capeksafety/reviewkit/internal/domain/model"
)

// Ledger holds the comment threads of one review session, keyed by scoped
// entity target. Comments keep insertion order per target, and resolution
// is append-only: resolved text and explanation stay immutable, and
// reopening creates a new comment instead of rewriting history.
type Ledger struct {
	scope    model.ReviewScope
	comments []model.Comment
	byID     map[string]int // Comment ID -> index into comments.
}

// NewLedger creates an empty ledger validating targets against scope.
func NewLedger(scope model.ReviewScope) *Ledger {
	return &Ledger{scope: scope, byID: make(map[string]int)}
}

// Add appends a comment. The caller fills TargetID, Author, Text, and
// optionally the ReqID/Field qualifiers; the ledger assigns ID and
// CreatedAt. Targets outside the session scope fail with ErrOutOfScope.
func (l *Ledger) Add(draft model.Comment) (model.Comment, error) {
	if !l.scope.Contains(draft.TargetID) {
		return model.Comment{}, fmt.Errorf("target %s: %w", draft.TargetID, model.ErrOutOfScope)
	}

	draft.ID = uuid.NewString()
	draft.Resolved = false
	draft.Resolution = ""
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}

	l.byID[draft.ID] = len(l.comments)
	l.comments = append(l.comments, draft)
	return draft, nil
}

// Resolve marks the comment resolved with the given explanation. A blank
// explanation fails with ErrEmptyExplanation; resolving twice fails with
// ErrAlreadyResolved.
func (l *Ledger) Resolve(commentID, explanation string) error {
	idx, ok := l.byID[commentID]
	if !ok {
		return fmt.Errorf("comment %s: %w", commentID, ErrCommentNotFound)
	}
	if l.comments[idx].Resolved {
		return fmt.Errorf("comment %s: %w", commentID, model.ErrAlreadyResolved)
	}
	if strings.TrimSpace(explanation) == "" {
		return fmt.Errorf("comment %s: %w", commentID, model.ErrEmptyExplanation)
	}

	l.comments[idx].Resolved = true
	l.comments[idx].Resolution = explanation
	return nil
}

// Reopen creates a follow-up comment on the same target, referencing the
// resolved comment it disputes. The original stays resolved so the audit
// trail is preserved.
func (l *Ledger) Reopen(commentID, author, text string) (model.Comment, error) {
	idx, ok := l.byID[commentID]
	if !ok {
		return model.Comment{}, fmt.Errorf("comment %s: %w", commentID, ErrCommentNotFound)
	}
	prev := l.comments[idx]
	if !prev.Resolved {
		return model.Comment{}, fmt.Errorf("comment %s is not resolved", commentID)
	}

	return l.Add(model.Comment{
		TargetID:       prev.TargetID,
		Author:         author,
		Text:           text,
		ReqID:          prev.ReqID,
		Field:          prev.Field,
		ReopenedFromID: prev.ID,
	})
}

// Get returns the comment with the given ID.
func (l *Ledger) Get(commentID string) (model.Comment, error) {
	idx, ok := l.byID[commentID]
	if !ok {
		return model.Comment{}, fmt.Errorf("comment %s: %w", commentID, ErrCommentNotFound)
	}
	return l.comments[idx], nil
}

// CommentsFor returns the comments on the given target in insertion order.
func (l *Ledger) CommentsFor(targetID string) []model.Comment {
	var out []model.Comment
	for _, c := range l.comments {
		if c.TargetID == targetID {
			out = append(out, c)
		}
	}
	return out
}

// All returns every comment in insertion order.
func (l *Ledger) All() []model.Comment {
	out := make([]model.Comment, len(l.comments))
	copy(out, l.comments)
	return out
}

// UnresolvedTargets returns the set of target identifiers that still
// carry at least one unresolved comment. The viewer uses this to place
// its unresolved-comment indicators.
func (l *Ledger) UnresolvedTargets() map[string]struct{} {
	targets := make(map[string]struct{})
	for _, c := range l.comments {
		if !c.Resolved {
			targets[c.TargetID] = struct{}{}
		}
	}
	return targets
}

// HasUnresolved reports whether any comment in the ledger is unresolved.
// Approval gating consults this.
func (l *Ledger) HasUnresolved() bool {
	for _, c := range l.comments {
		if !c.Resolved {
			return true
		}
	}
	return false
}

// restore reloads persisted comments in stored order, bypassing scope
// checks since they were validated when first added.
func (l *Ledger) restore(comments []model.Comment) {
	l.comments = make([]model.Comment, len(comments))
	copy(l.comments, comments)
	l.byID = make(map[string]int, len(comments))
	for i, c := range comments {
		l.byID[c.ID] = i
	}
}
