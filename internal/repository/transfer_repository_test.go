package repository

import (
	"context"
	"testing"

	"lager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferRepository_ExportImportRoundTrip(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	categories := NewCategoryRepository(testDB)
	products := NewProductRepository(testDB)
	transfer := NewTransferRepository(testDB)

	_, err := categories.SeedIfEmpty(ctx, domain.DefaultCategories)
	require.NoError(t, err)
	require.NoError(t, products.Create(ctx, &domain.Product{Name: "Cola", Barcode: "4001", Quantity: 2, CategoryID: int64Ptr(2)}))
	require.NoError(t, products.Create(ctx, &domain.Product{Name: "Brot", Barcode: "4003", Quantity: 0, Image: strPtr("https://img.example/brot.jpg")}))

	before, err := transfer.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, transfer.Replace(ctx, before.Categories, before.Products))

	after, err := transfer.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTransferRepository_ReplacePreservesIDsAndAdvancesSequences(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	products := NewProductRepository(testDB)
	categories := NewCategoryRepository(testDB)
	transfer := NewTransferRepository(testDB)

	err := transfer.Replace(ctx,
		[]domain.Category{{ID: 10, Name: "Tiefkühl", Slug: "tiefkuehl"}},
		[]domain.Product{{ID: 42, Name: "Pizza", Barcode: "9001", Quantity: 1, CategoryID: int64Ptr(10)}},
	)
	require.NoError(t, err)

	stored, err := products.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", stored.Name)

	next := &domain.Product{Name: "Eis", Barcode: "9002", Quantity: 1}
	require.NoError(t, products.Create(ctx, next))
	assert.Equal(t, int64(43), next.ID)

	category := &domain.Category{Name: "Neu", Slug: "neu"}
	require.NoError(t, categories.Create(ctx, category))
	assert.Equal(t, int64(11), category.ID)
}

func TestTransferRepository_ReplaceWithIDsBeyond32Bits(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	products := NewProductRepository(testDB)
	transfer := NewTransferRepository(testDB)

	const bigID = int64(1) << 40
	err := transfer.Replace(ctx,
		[]domain.Category{{ID: bigID, Name: "Lager", Slug: "lager"}},
		[]domain.Product{{ID: bigID + 1, Name: "Palette", Barcode: "7001", Quantity: 1, CategoryID: int64Ptr(bigID)}},
	)
	require.NoError(t, err)

	stored, err := products.FindByID(ctx, bigID+1)
	require.NoError(t, err)
	assert.Equal(t, int64Ptr(bigID), stored.CategoryID)

	next := &domain.Product{Name: "Kiste", Barcode: "7002", Quantity: 1}
	require.NoError(t, products.Create(ctx, next))
	assert.Equal(t, bigID+2, next.ID)
}

func TestTransferRepository_ReplaceRollsBackOnFailure(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	products := NewProductRepository(testDB)
	transfer := NewTransferRepository(testDB)

	require.NoError(t, products.Create(ctx, &domain.Product{Name: "Cola", Barcode: "4001", Quantity: 1}))

	err := transfer.Replace(ctx,
		[]domain.Category{{ID: 1, Name: "A", Slug: "a"}},
		[]domain.Product{
			{ID: 1, Name: "X", Barcode: "dup", Quantity: 1},
			{ID: 2, Name: "Y", Barcode: "dup", Quantity: 1},
		},
	)
	assert.ErrorIs(t, err, ErrDuplicateBarcode)

	snapshot, err := transfer.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Categories)
	require.Len(t, snapshot.Products, 1)
	assert.Equal(t, "4001", snapshot.Products[0].Barcode)
}

func TestTransferRepository_ReplaceWithEmptySets(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	transfer := NewTransferRepository(testDB)
	products := NewProductRepository(testDB)

	require.NoError(t, products.Create(ctx, &domain.Product{Name: "Cola", Barcode: "4001", Quantity: 1}))
	require.NoError(t, transfer.Replace(ctx, nil, nil))

	snapshot, err := transfer.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Categories)
	assert.Empty(t, snapshot.Products)
}
