package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/domain/transfer"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
)

func newTransferRepo(t *testing.T) *BlobTransferRepository {
	t.Helper()
	docs := storage.NewDocumentStore(storage.NewMemoryStore(), zap.NewNop())
	return NewBlobTransferRepository(docs)
}

func makeTransfer(t *testing.T, origin, destination string, typ transfer.Type) *transfer.Transfer {
	t.Helper()
	tr, err := transfer.NewTransfer(origin, destination, typ,
		[]transfer.Item{{SKU: "SKU-1", Quantity: 5}}, "alice", "alice@example.com")
	require.NoError(t, err)
	return tr
}

func TestTransferRepositorySaveAndFindByID(t *testing.T) {
	repo := newTransferRepo(t)
	ctx := context.Background()

	tr := makeTransfer(t, "Warehouse A", "Warehouse B", transfer.TypeSea)
	require.NoError(t, repo.Save(ctx, tr))

	found, err := repo.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, found.ID)
	assert.Equal(t, "Warehouse A", found.Origin)
	assert.Equal(t, transfer.StatusDraft, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 5, found.Items[0].Quantity)
}

func TestTransferRepositoryFindByIDNotFound(t *testing.T) {
	repo := newTransferRepo(t)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTransferRepositoryUpsert(t *testing.T) {
	repo := newTransferRepo(t)
	ctx := context.Background()

	tr := makeTransfer(t, "Warehouse A", "Warehouse B", transfer.TypeSea)
	require.NoError(t, repo.Save(ctx, tr))

	require.NoError(t, tr.Dispatch())
	require.NoError(t, repo.Save(ctx, tr))

	found, err := repo.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusInTransit, found.Status)

	all, err := repo.FindAll(ctx, transfer.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "saving twice must not duplicate")
}

func TestTransferRepositoryFindAllFilters(t *testing.T) {
	repo := newTransferRepo(t)
	ctx := context.Background()

	sea := makeTransfer(t, "Warehouse A", "Warehouse B", transfer.TypeSea)
	air := makeTransfer(t, "Warehouse A", "Warehouse C", transfer.TypeAirExpress)
	require.NoError(t, repo.Save(ctx, sea))
	require.NoError(t, repo.Save(ctx, air))
	require.NoError(t, air.Dispatch())
	require.NoError(t, repo.Save(ctx, air))

	seaType := transfer.TypeSea
	byType, err := repo.FindAll(ctx, transfer.ListFilter{Type: &seaType})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, sea.ID, byType[0].ID)

	inTransit := transfer.StatusInTransit
	byStatus, err := repo.FindAll(ctx, transfer.ListFilter{Status: &inTransit})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, air.ID, byStatus[0].ID)

	byDest, err := repo.FindAll(ctx, transfer.ListFilter{Destination: "Warehouse C"})
	require.NoError(t, err)
	require.Len(t, byDest, 1)
	assert.Equal(t, air.ID, byDest[0].ID)

	none, err := repo.FindAll(ctx, transfer.ListFilter{Origin: "Elsewhere"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTransferRepositoryFindAllNewestFirst(t *testing.T) {
	repo := newTransferRepo(t)
	ctx := context.Background()

	older := makeTransfer(t, "Warehouse A", "Warehouse B", transfer.TypeSea)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := makeTransfer(t, "Warehouse A", "Warehouse B", transfer.TypeSea)

	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	all, err := repo.FindAll(ctx, transfer.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
}

func TestTransferRepositoryEmptyStore(t *testing.T) {
	repo := newTransferRepo(t)

	all, err := repo.FindAll(context.Background(), transfer.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransferRepositoryVersionIncrements(t *testing.T) {
	repo := newTransferRepo(t)
	ctx := context.Background()

	tr := makeTransfer(t, "Warehouse A", "Warehouse B", transfer.TypeSea)
	require.NoError(t, repo.Save(ctx, tr))
	require.NoError(t, repo.Save(ctx, tr))

	doc, err := repo.load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
}
