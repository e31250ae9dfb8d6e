package driven

import (
	"context"
	"errors"

	"github.com/capeksafety/reviewkit/internal/domain/model"
)

// ErrSessionNotFound is returned when a review session does not exist.
var ErrSessionNotFound = errors.New("review session not found")

// ErrCommentNotFound is returned when a comment does not exist.
var ErrCommentNotFound = errors.New("review comment not found")

// ReviewStore defines the driven port for persisting review state:
// sessions with participants and scope, comment ledgers, and the
// approved-version history. Implementations must round-trip every field
// exactly; the registry's Save followed by Load reproduces its state.
type ReviewStore interface {
	UpsertSession(ctx context.Context, session model.ReviewSession) error
	GetSessions(ctx context.Context) ([]model.ReviewSession, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// ReplaceComments atomically rewrites the stored ledger of one
	// session, preserving slice order as insertion order.
	ReplaceComments(ctx context.Context, sessionID string, comments []model.Comment) error
	GetCommentsBySession(ctx context.Context, sessionID string) ([]model.Comment, error)

	// ReplaceApprovedVersions rewrites the approved history, oldest first.
	ReplaceApprovedVersions(ctx context.Context, versions []model.ApprovedVersion) error
	GetApprovedVersions(ctx context.Context) ([]model.ApprovedVersion, error)
}
