package application

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/capeksafety/reviewkit/internal/domain/model"
)

// action names the state-machine transitions guarded by role.
type action string

const (
	actionExtendDueDate    action = "extend_due_date"
	actionMarkComplete     action = "mark_reviewer_complete"
	actionApprove          action = "approve"
	actionEditSession      action = "edit_session"
	actionEditParticipants action = "edit_participants"
)

// permitted is the explicit role-permission table per action. Roles are
// compared against it instead of specializing participant types.
var permitted = map[action]map[model.Role]bool{
	actionExtendDueDate:    {model.RoleModerator: true},
	actionMarkComplete:     {model.RoleReviewer: true},
	actionApprove:          {model.RoleApprover: true},
	actionEditSession:      {model.RoleModerator: true},
	actionEditParticipants: {model.RoleModerator: true},
}

// moderatorExempt marks the actions a moderator may still perform while
// the session sits in its read-only window.
var moderatorExempt = map[action]bool{
	actionExtendDueDate:    true,
	actionEditSession:      true,
	actionEditParticipants: true,
}

// Session couples one review session with its comment ledger and runs
// the lifecycle state machine: Open, then ReadOnly once the due date
// passes, then Approved as the terminal state reached only through an
// explicit approval. All mutations go through these methods.
type Session struct {
	data     model.ReviewSession
	ledger   *Ledger
	registry *Registry // Owning registry; receives approval side effects.
	now      func() time.Time
}

// Data returns a copy of the underlying session record.
func (s *Session) Data() model.ReviewSession {
	out := s.data
	out.Participants = append([]model.Participant(nil), s.data.Participants...)
	return out
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.data.ID }

// Name returns the registry-unique session name.
func (s *Session) Name() string { return s.data.Name }

// Ledger exposes the session's comment ledger. Commenting stays open
// during the read-only window; only state transitions are locked.
func (s *Session) Ledger() *Ledger { return s.ledger }

// Status returns the current lifecycle state.
func (s *Session) Status() model.ReviewStatus {
	return s.data.Status(s.now())
}

// guard runs the role and read-only checks shared by every transition.
func (s *Session) guard(act action, actor string) error {
	role, ok := s.data.RoleOf(actor)
	if !ok || !permitted[act][role] {
		return fmt.Errorf("%s by %q: %w", act, actor, model.ErrPermissionDenied)
	}

	switch s.Status() {
	case model.ReviewStatusApproved:
		return fmt.Errorf("%s: session %q is approved: %w", act, s.data.Name, model.ErrReviewLocked)
	case model.ReviewStatusReadOnly:
		if role == model.RoleModerator && moderatorExempt[act] {
			return nil
		}
		return fmt.Errorf("%s: session %q: %w", act, s.data.Name, model.ErrReviewLocked)
	}
	return nil
}

// ExtendDueDate moves the due date. Moderator only; valid while the
// session is open or read-only. A future date reopens a read-only
// session, since status is derived from the due date.
func (s *Session) ExtendDueDate(actor string, newDate time.Time) error {
	if err := s.guard(actionExtendDueDate, actor); err != nil {
		return err
	}
	s.data.DueDate = newDate
	slog.Info("review due date extended",
		"review", s.data.Name, "moderator", actor, "due", newDate, "status", s.Status())
	return nil
}

// MarkReviewerComplete records that the acting reviewer finished their
// pass. Idempotent per participant.
func (s *Session) MarkReviewerComplete(actor string) error {
	if err := s.guard(actionMarkComplete, actor); err != nil {
		return err
	}
	for i, p := range s.data.Participants {
		if p.Name == actor {
			s.data.Participants[i].Done = true
		}
	}
	return nil
}

// Approve transitions the session to its terminal state. Joint reviews
// only, approver role only. Fails with ErrApprovalBlocked unless every
// reviewer has marked complete and every in-scope comment is resolved.
// On success the given snapshot becomes the new approved baseline for
// future diffs.
func (s *Session) Approve(actor string, current model.Snapshot) error {
	if s.data.Kind != model.ReviewKindJoint {
		// Peer reviews have no approval step; they are finalized outside
		// the review engine.
		return fmt.Errorf("approve on peer review %q: %w", s.data.Name, model.ErrPermissionDenied)
	}
	if err := s.guard(actionApprove, actor); err != nil {
		return err
	}
	if !s.data.AllReviewersDone() || s.ledger.HasUnresolved() {
		return fmt.Errorf("approve session %q: %w", s.data.Name, model.ErrApprovalBlocked)
	}

	s.data.Approved = true
	s.registry.recordApproval(s, current)
	slog.Info("review approved",
		"review", s.data.Name, "approver", actor, "snapshot", current.Version)
	return nil
}

// SetDescription updates the session description. Moderator only,
// allowed during the read-only window.
func (s *Session) SetDescription(actor, description string) error {
	if err := s.guard(actionEditSession, actor); err != nil {
		return err
	}
	s.data.Description = description
	return nil
}

// SetParticipants replaces the participant list. Moderator only, allowed
// during the read-only window. The role-count invariants of the review
// kind still apply.
func (s *Session) SetParticipants(actor string, participants []model.Participant) error {
	if err := s.guard(actionEditParticipants, actor); err != nil {
		return err
	}
	if err := validateParticipants(participants); err != nil {
		return err
	}
	s.data.Participants = append([]model.Participant(nil), participants...)
	return nil
}

// validateParticipants enforces the creation invariants: at least one
// moderator and at least one reviewer, for both peer and joint reviews.
// Joint reviews may be created without an approver; they simply cannot
// be approved until one is added.
func validateParticipants(participants []model.Participant) error {
	var moderators, reviewers int
	for _, p := range participants {
		switch p.Role {
		case model.RoleModerator:
			moderators++
		case model.RoleReviewer:
			reviewers++
		case model.RoleApprover:
		default:
			return fmt.Errorf("unknown role %q: %w", p.Role, model.ErrInvalidParticipants)
		}
	}
	if moderators < 1 || reviewers < 1 {
		return model.ErrInvalidParticipants
	}
	return nil
}
