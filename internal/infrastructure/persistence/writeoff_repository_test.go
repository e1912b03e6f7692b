package persistence

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/horyco/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormWriteoffRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWriteoffRepository(db)
	ctx := context.Background()

	w, err := inventory.NewWriteoff("WO-20260901-0001", uuid.New(), inventory.WriteoffReasonSpoilage, uuid.New())
	require.NoError(t, err)
	require.NoError(t, w.AddLine(uuid.New(), decimal.NewFromInt(3), "gone off"))
	require.NoError(t, repo.Save(ctx, w))

	found, err := repo.FindByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.WriteoffNumber, found.WriteoffNumber)
	require.Len(t, found.Lines, 1)
	assert.True(t, found.Lines[0].Quantity.Equal(decimal.NewFromInt(3)))

	byNumber, err := repo.FindByNumber(ctx, w.WriteoffNumber)
	require.NoError(t, err)
	assert.Equal(t, w.ID, byNumber.ID)
}

func TestGormWriteoffRepository_UpdateReplacesRemovedLines(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWriteoffRepository(db)
	ctx := context.Background()

	w, err := inventory.NewWriteoff("WO-20260901-0002", uuid.New(), inventory.WriteoffReasonBreakage, uuid.New())
	require.NoError(t, err)
	require.NoError(t, w.AddLine(uuid.New(), decimal.NewFromInt(2), ""))
	require.NoError(t, w.AddLine(uuid.New(), decimal.NewFromInt(4), ""))
	require.NoError(t, repo.Save(ctx, w))

	require.NoError(t, w.RemoveLine(w.Lines[0].ID))
	require.NoError(t, repo.Update(ctx, w))

	found, err := repo.FindByID(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.True(t, found.Lines[0].Quantity.Equal(decimal.NewFromInt(4)))
}

func TestGormWriteoffRepository_NextNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWriteoffRepository(db)
	ctx := context.Background()

	number, err := repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(number, "WO-"))
	assert.True(t, strings.HasSuffix(number, "-0001"))

	w, err := inventory.NewWriteoff(number, uuid.New(), inventory.WriteoffReasonLoss, uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, w))

	next, err := repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(next, "-0002"))
}
