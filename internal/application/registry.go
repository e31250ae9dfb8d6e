package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/capeksafety/reviewkit/internal/domain/model"
	"github.com/capeksafety/reviewkit/internal/domain/port/driven"
)

// Re-exported store sentinels so application callers don't need to
// import the port package for errors.Is checks.
var (
	ErrSessionNotFound = driven.ErrSessionNotFound
	ErrCommentNotFound = driven.ErrCommentNotFound
)

// Registry owns every review session of one model document, plus the
// approved-version history the diff engine baselines against. A single
// registry instance serves a document; callers serialize writes, which
// matches the single active document context of the editor.
type Registry struct {
	store    driven.ReviewStore // nil for a purely in-memory registry.
	sessions []*Session         // Creation order.
	byName   map[string]*Session
	history  []model.ApprovedVersion // Oldest first.
	now      func() time.Time
}

// NewRegistry creates a registry backed by the given store. A nil store
// keeps all state in memory only.
func NewRegistry(store driven.ReviewStore) *Registry {
	return &Registry{
		store:  store,
		byName: make(map[string]*Session),
		now:    time.Now,
	}
}

// CreateSession opens a new review over a frozen copy of scope. The name
// must be unique across the registry and the participant list must carry
// at least one moderator and one reviewer. The session baselines against
// the latest approved version, if any.
func (r *Registry) CreateSession(
	kind model.ReviewKind,
	scope model.ReviewScope,
	participants []model.Participant,
	name, description string,
	dueDate time.Time,
) (*Session, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("create session %q: %w", name, model.ErrDuplicateName)
	}
	if err := validateParticipants(participants); err != nil {
		return nil, fmt.Errorf("create session %q: %w", name, err)
	}

	frozen := model.NewReviewScope(scope.IDs())

	data := model.ReviewSession{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		Kind:         kind,
		Scope:        frozen,
		Participants: append([]model.Participant(nil), participants...),
		DueDate:      dueDate,
	}
	if latest, ok := r.LatestApproved(); ok {
		data.BaselineVersion = latest.Snapshot.Version
	}

	session := &Session{
		data:     data,
		ledger:   NewLedger(frozen),
		registry: r,
		now:      r.now,
	}
	r.sessions = append(r.sessions, session)
	r.byName[name] = session

	slog.Info("review session created",
		"review", name, "kind", kind, "participants", len(participants),
		"scope_size", len(frozen.EntityIDs), "due", dueDate)
	return session, nil
}

// SessionByName looks up a session by its unique name.
func (r *Registry) SessionByName(name string) (*Session, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", name, ErrSessionNotFound)
	}
	return s, nil
}

// Sessions returns all sessions in creation order.
func (r *Registry) Sessions() []*Session {
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// MergeComments copies comments from a foreign session's ledger into the
// target session, keeping only those whose target exists in the source
// snapshot and lies inside the target's scope. Exact duplicates (same
// target, author, and text) are skipped, so running the same merge twice
// leaves the target ledger unchanged. Returns the number merged.
func (r *Registry) MergeComments(source []model.Comment, sourceSnap model.Snapshot, target *Session) int {
	existing := make(map[string]struct{}, len(target.ledger.comments))
	for _, c := range target.ledger.comments {
		existing[mergeKey(c)] = struct{}{}
	}

	merged := 0
	for _, c := range source {
		if _, ok := sourceSnap.Entities[c.TargetID]; !ok {
			continue
		}
		if !target.data.Scope.Contains(c.TargetID) {
			continue
		}
		if _, dup := existing[mergeKey(c)]; dup {
			continue
		}

		copied := c
		copied.ID = uuid.NewString()
		target.ledger.byID[copied.ID] = len(target.ledger.comments)
		target.ledger.comments = append(target.ledger.comments, copied)
		existing[mergeKey(copied)] = struct{}{}
		merged++
	}

	if merged > 0 {
		slog.Info("comments merged", "review", target.data.Name, "count", merged)
	}
	return merged
}

func mergeKey(c model.Comment) string {
	return c.TargetID + "\x00" + c.Author + "\x00" + c.Text
}

// ApprovedHistory returns the approved-version entries, oldest first.
func (r *Registry) ApprovedHistory() []model.ApprovedVersion {
	out := make([]model.ApprovedVersion, len(r.history))
	copy(out, r.history)
	return out
}

// LatestApproved returns the most recent approved version, if any.
func (r *Registry) LatestApproved() (model.ApprovedVersion, bool) {
	if len(r.history) == 0 {
		return model.ApprovedVersion{}, false
	}
	return r.history[len(r.history)-1], true
}

// CompareToBaseline diffs the current snapshot against the last approved
// version, restricted to the session's scope. This is the pass run
// automatically when a review document opens; the explicit compare
// action calls Diff directly with user-chosen snapshots.
func (r *Registry) CompareToBaseline(s *Session, current model.Snapshot) (model.ChangeSet, error) {
	baseline, ok := r.LatestApproved()
	if !ok {
		// Nothing approved yet: everything in scope reads as added.
		empty := model.Snapshot{Version: "", Entities: map[string]model.Entity{}}
		return Diff(empty, current, &s.data.Scope)
	}
	return Diff(baseline.Snapshot, current, &s.data.Scope)
}

// recordApproval appends to the history. Called by Session.Approve.
func (r *Registry) recordApproval(s *Session, snap model.Snapshot) {
	r.history = append(r.history, model.ApprovedVersion{
		Snapshot:   snap,
		SessionID:  s.data.ID,
		ApprovedAt: r.now().UTC(),
	})
}

// Save writes every session, its comments, and the approved history
// through the store. No-op for in-memory registries.
func (r *Registry) Save(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	for _, s := range r.sessions {
		if err := r.store.UpsertSession(ctx, s.data); err != nil {
			return fmt.Errorf("save session %q: %w", s.data.Name, err)
		}
		if err := r.store.ReplaceComments(ctx, s.data.ID, s.ledger.All()); err != nil {
			return fmt.Errorf("save comments for %q: %w", s.data.Name, err)
		}
	}
	if err := r.store.ReplaceApprovedVersions(ctx, r.history); err != nil {
		return fmt.Errorf("save approved history: %w", err)
	}
	return nil
}

// Load rebuilds the registry from the store, replacing any in-memory
// state. Session order follows the store's creation order.
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	sessions, err := r.store.GetSessions(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	r.sessions = nil
	r.byName = make(map[string]*Session, len(sessions))
	for _, data := range sessions {
		comments, err := r.store.GetCommentsBySession(ctx, data.ID)
		if err != nil {
			return fmt.Errorf("load comments for %q: %w", data.Name, err)
		}
		ledger := NewLedger(data.Scope)
		ledger.restore(comments)

		session := &Session{data: data, ledger: ledger, registry: r, now: r.now}
		r.sessions = append(r.sessions, session)
		r.byName[data.Name] = session
	}

	r.history, err = r.store.GetApprovedVersions(ctx)
	if err != nil {
		return fmt.Errorf("load approved history: %w", err)
	}

	slog.Info("review registry loaded",
		"sessions", len(r.sessions), "approved_versions", len(r.history))
	return nil
}
