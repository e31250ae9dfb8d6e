package model

import "errors"

// Review engine error conditions. All of these except ErrMalformedSnapshot
// are expected user-facing outcomes that callers surface for correction;
// they are never retried or swallowed. ErrMalformedSnapshot means the
// entity store handed out a snapshot violating its own invariants, and
// the triggering operation aborts without partial output.
var (
	// ErrPermissionDenied means the acting participant's role does not
	// permit the attempted action.
	ErrPermissionDenied = errors.New("permission denied for this role")

	// ErrApprovalBlocked means approval preconditions are unmet: a
	// reviewer has not marked complete, or an in-scope comment is
	// unresolved.
	ErrApprovalBlocked = errors.New("approval blocked: reviewers incomplete or comments unresolved")

	// ErrReviewLocked means the session is past its due date and only
	// moderator actions are allowed until the due date is extended.
	ErrReviewLocked = errors.New("review is read-only: due date passed")

	// ErrOutOfScope means a comment target is not part of the session's
	// frozen review scope.
	ErrOutOfScope = errors.New("comment target outside review scope")

	// ErrEmptyExplanation means a comment was resolved without an
	// explanation.
	ErrEmptyExplanation = errors.New("resolution requires a non-empty explanation")

	// ErrAlreadyResolved means the comment was resolved before.
	ErrAlreadyResolved = errors.New("comment already resolved")

	// ErrDuplicateName means a session with that name already exists.
	ErrDuplicateName = errors.New("review name already in use")

	// ErrInvalidParticipants means the role-count invariants for the
	// review kind are violated.
	ErrInvalidParticipants = errors.New("invalid participants: need at least one moderator and one reviewer")

	// ErrMalformedSnapshot indicates an entity-store invariant breach.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)
