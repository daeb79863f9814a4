package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickstack/tickstack-server/internal/async"
	"github.com/tickstack/tickstack-server/internal/domain"
	apperrors "github.com/tickstack/tickstack-server/internal/errors"
)

func TestAsync_FetchChecklistsLoadingThenSuccess(t *testing.T) {
	f := setupServices(t, "u1")
	ctx := context.Background()

	checklist := &domain.Checklist{ListID: "u1-1", Title: "Groceries"}
	require.NoError(t, f.checklists.SaveChecklist(ctx, checklist))

	facade := NewAsync(f.checklists, f.items)
	results := facade.FetchChecklists(ctx)

	first := <-results
	assert.Equal(t, async.StateLoading, first.State)

	final := <-results
	require.Equal(t, async.StateLoaded, final.State)
	require.Len(t, final.Value, 1)
	assert.Equal(t, "u1-1", final.Value[0].ListID)

	_, open := <-results
	assert.False(t, open)
}

func TestAsync_FetchItemWithParentPropagatesError(t *testing.T) {
	f := setupServices(t, "u1")
	ctx := context.Background()

	facade := NewAsync(f.checklists, f.items)

	result := async.Await(facade.FetchItemWithParent(ctx, "u1-5", "u1-missing"))
	require.Equal(t, async.StateFailed, result.State)
	assert.ErrorIs(t, result.Err, apperrors.ErrNotFound)
	assert.Nil(t, result.Value.Item)
	assert.Nil(t, result.Value.Checklist)
}
