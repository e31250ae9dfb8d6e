package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capeksafety/reviewkit/internal/application"
	"github.com/capeksafety/reviewkit/internal/domain/model"
)

func TestModelStore_RejectsMalformedSnapshots(t *testing.T) {
	good := snap("v1", []model.Entity{node("N1", "Brake loss", "")})
	store, err := application.NewModelStore(good)
	require.NoError(t, err)
	assert.Equal(t, "v1", store.CurrentSnapshot().Version)

	bad := model.Snapshot{
		Version:  "v2",
		Entities: map[string]model.Entity{"N1": node("N1", "Brake loss", "")},
		Links:    []model.Link{{SourceID: "N1", TargetID: "GONE", Kind: model.LinkKindChild}},
	}
	err = store.SetSnapshot(bad)
	assert.ErrorIs(t, err, model.ErrMalformedSnapshot)

	// The previous snapshot stays current after a rejected update.
	assert.Equal(t, "v1", store.CurrentSnapshot().Version)
}

func TestModelStore_AllocationToMissingRequirementIsMalformed(t *testing.T) {
	n := node("N1", "Brake loss", "")
	n.Allocations = []string{"SR-404"}

	_, err := application.NewModelStore(snap("v1", []model.Entity{n}))
	assert.ErrorIs(t, err, model.ErrMalformedSnapshot)
}
