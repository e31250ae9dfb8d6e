package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capeksafety/reviewkit/internal/application"
	"github.com/capeksafety/reviewkit/internal/domain/model"
)

func newScopedLedger(ids ...string) *application.Ledger {
	return application.NewLedger(model.NewReviewScope(ids))
}

func TestLedger_AddRejectsOutOfScopeTarget(t *testing.T) {
	ledger := newScopedLedger("N1", "N2")

	_, err := ledger.Add(model.Comment{TargetID: "N9", Author: "alice", Text: "dangling"})
	assert.ErrorIs(t, err, model.ErrOutOfScope)

	c, err := ledger.Add(model.Comment{TargetID: "N1", Author: "alice", Text: "check the gate type"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.Resolved)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestLedger_ResolveRequiresExplanation(t *testing.T) {
	ledger := newScopedLedger("N1")
	c, err := ledger.Add(model.Comment{TargetID: "N1", Author: "alice", Text: "wrong FIT rate"})
	require.NoError(t, err)

	assert.ErrorIs(t, ledger.Resolve(c.ID, ""), model.ErrEmptyExplanation)
	assert.ErrorIs(t, ledger.Resolve(c.ID, "   "), model.ErrEmptyExplanation)

	require.NoError(t, ledger.Resolve(c.ID, "rate corrected to 12 FIT"))

	got, err := ledger.Get(c.ID)
	require.NoError(t, err)
	assert.True(t, got.Resolved)
	assert.Equal(t, "rate corrected to 12 FIT", got.Resolution)

	assert.ErrorIs(t, ledger.Resolve(c.ID, "again"), model.ErrAlreadyResolved)
}

func TestLedger_ResolveUnknownComment(t *testing.T) {
	ledger := newScopedLedger("N1")
	assert.ErrorIs(t, ledger.Resolve("nope", "x"), application.ErrCommentNotFound)
}

func TestLedger_CommentsForKeepsInsertionOrder(t *testing.T) {
	ledger := newScopedLedger("N1", "N2")

	first, err := ledger.Add(model.Comment{TargetID: "N1", Author: "alice", Text: "first"})
	require.NoError(t, err)
	_, err = ledger.Add(model.Comment{TargetID: "N2", Author: "bob", Text: "other target"})
	require.NoError(t, err)
	second, err := ledger.Add(model.Comment{TargetID: "N1", Author: "bob", Text: "second"})
	require.NoError(t, err)

	comments := ledger.CommentsFor("N1")
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)

	assert.Len(t, ledger.All(), 3)
}

func TestLedger_UnresolvedTargets(t *testing.T) {
	ledger := newScopedLedger("N1", "N2", "N3")

	c1, err := ledger.Add(model.Comment{TargetID: "N1", Author: "alice", Text: "a"})
	require.NoError(t, err)
	_, err = ledger.Add(model.Comment{TargetID: "N2", Author: "alice", Text: "b"})
	require.NoError(t, err)

	targets := ledger.UnresolvedTargets()
	assert.Contains(t, targets, "N1")
	assert.Contains(t, targets, "N2")
	assert.NotContains(t, targets, "N3")

	require.NoError(t, ledger.Resolve(c1.ID, "fixed"))
	targets = ledger.UnresolvedTargets()
	assert.NotContains(t, targets, "N1")
	assert.Contains(t, targets, "N2")
	assert.True(t, ledger.HasUnresolved())
}

func TestLedger_ReopenIsAppendOnly(t *testing.T) {
	ledger := newScopedLedger("N1")
	c, err := ledger.Add(model.Comment{TargetID: "N1", Author: "alice", Text: "gate should be OR"})
	require.NoError(t, err)

	// Reopening an unresolved comment is meaningless.
	_, err = ledger.Reopen(c.ID, "bob", "still wrong")
	assert.Error(t, err)

	require.NoError(t, ledger.Resolve(c.ID, "changed to OR"))

	followUp, err := ledger.Reopen(c.ID, "bob", "OR is wrong too, needs voting gate")
	require.NoError(t, err)
	assert.Equal(t, c.ID, followUp.ReopenedFromID)
	assert.Equal(t, "N1", followUp.TargetID)
	assert.False(t, followUp.Resolved)

	// The original stays resolved with its explanation intact.
	original, err := ledger.Get(c.ID)
	require.NoError(t, err)
	assert.True(t, original.Resolved)
	assert.Equal(t, "changed to OR", original.Resolution)
	assert.True(t, ledger.HasUnresolved())
}

func TestLedger_CommentTargetLabels(t *testing.T) {
	assert.Equal(t, "N7", model.Comment{TargetID: "N7"}.TargetLabel())
	assert.Equal(t, "N7 [Req SR-3]", model.Comment{TargetID: "N7", ReqID: "SR-3"}.TargetLabel())
	assert.Equal(t, "N7 [FMEA severity]", model.Comment{TargetID: "N7", Field: "severity"}.TargetLabel())
}
