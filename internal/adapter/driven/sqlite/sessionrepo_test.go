package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capeksafety/reviewkit/internal/domain/model"
	"github.com/capeksafety/reviewkit/internal/domain/port/driven"
)

func makeSession(id, name string) model.ReviewSession {
	return model.ReviewSession{
		ID:          id,
		Name:        name,
		Description: "confirmation review of the braking FTA",
		Kind:        model.ReviewKindJoint,
		Scope:       model.NewReviewScope([]string{"N1", "N2", "SR-1"}),
		Participants: []model.Participant{
			{Name: "mona", Email: "mona@example.com", Role: model.RoleModerator},
			{Name: "rita", Email: "rita@example.com", Role: model.RoleReviewer, Done: true},
			{Name: "ada", Email: "ada@example.com", Role: model.RoleApprover},
		},
		DueDate:         time.Date(2026, 9, 15, 17, 0, 0, 0, time.UTC),
		BaselineVersion: "approved v3",
	}
}

func TestSessionRepo_SessionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	session := makeSession("s1", "braking joint review")
	require.NoError(t, repo.UpsertSession(ctx, session))

	got, err := repo.GetSessions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, session, got[0])
}

func TestSessionRepo_UpsertUpdatesInPlace(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	session := makeSession("s1", "braking joint review")
	require.NoError(t, repo.UpsertSession(ctx, session))

	session.Description = "scope widened to include the ABS model"
	session.Approved = true
	session.Participants = append(session.Participants,
		model.Participant{Name: "rob", Role: model.RoleReviewer})
	require.NoError(t, repo.UpsertSession(ctx, session))

	got, err := repo.GetSessions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, session, got[0])
}

func TestSessionRepo_SessionsKeepCreationOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSession(ctx, makeSession("s1", "first")))
	require.NoError(t, repo.UpsertSession(ctx, makeSession("s2", "second")))
	require.NoError(t, repo.UpsertSession(ctx, makeSession("s3", "third")))

	// Updating an early session must not move it to the back.
	updated := makeSession("s1", "first")
	updated.Description = "touched"
	require.NoError(t, repo.UpsertSession(ctx, updated))

	got, err := repo.GetSessions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)
	assert.Equal(t, "third", got[2].Name)
}

func TestSessionRepo_CommentRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	session := makeSession("s1", "braking joint review")
	require.NoError(t, repo.UpsertSession(ctx, session))

	created := time.Date(2026, 8, 30, 9, 30, 0, 123456789, time.UTC)
	comments := []model.Comment{
		{
			ID: "c1", TargetID: "N1", Author: "rita",
			Text: "cut set incomplete", CreatedAt: created,
		},
		{
			ID: "c2", TargetID: "SR-1", Author: "rita", ReqID: "SR-1",
			Text: "requirement wording ambiguous", Resolved: true,
			Resolution: "reworded in v4", CreatedAt: created.Add(time.Minute),
		},
		{
			ID: "c3", TargetID: "N2", Author: "ada", Field: "severity",
			Text: "severity 3 unjustified", ReopenedFromID: "c1",
			CreatedAt: created.Add(2 * time.Minute),
		},
	}
	require.NoError(t, repo.ReplaceComments(ctx, session.ID, comments))

	got, err := repo.GetCommentsBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, comments, got)

	t.Run("replace rewrites the ledger", func(t *testing.T) {
		require.NoError(t, repo.ReplaceComments(ctx, session.ID, comments[:1]))
		got, err := repo.GetCommentsBySession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, comments[:1], got)
	})
}

func TestSessionRepo_ApprovedVersionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	snapshot := model.Snapshot{
		Version: "approved v1",
		Entities: map[string]model.Entity{
			"N1": {
				ID: "N1", Kind: model.EntityKindNode, Name: "Brake loss",
				Fields:      map[string]string{"description": "brake fails", "asil": "D"},
				Allocations: []string{"SR-1"},
			},
			"SR-1": {
				ID: "SR-1", Kind: model.EntityKindRequirement,
				Fields: map[string]string{"text": "shall detect brake loss"},
			},
		},
		Links: []model.Link{{SourceID: "N1", TargetID: "SR-1", Kind: model.LinkKindTrace}},
	}

	versions := []model.ApprovedVersion{
		{
			Snapshot:   snapshot,
			SessionID:  "s1",
			ApprovedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			Snapshot:   model.Snapshot{Version: "approved v2", Entities: map[string]model.Entity{}},
			SessionID:  "s2",
			ApprovedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, repo.ReplaceApprovedVersions(ctx, versions))

	got, err := repo.GetApprovedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, versions, got)
}

func TestSessionRepo_DeleteSessionCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	session := makeSession("s1", "braking joint review")
	require.NoError(t, repo.UpsertSession(ctx, session))
	require.NoError(t, repo.ReplaceComments(ctx, session.ID, []model.Comment{
		{ID: "c1", TargetID: "N1", Author: "rita", Text: "x", CreatedAt: time.Now().UTC()},
	}))

	require.NoError(t, repo.DeleteSession(ctx, session.ID))

	sessions, err := repo.GetSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	comments, err := repo.GetCommentsBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, repo.DeleteSession(ctx, session.ID), driven.ErrSessionNotFound)
}
