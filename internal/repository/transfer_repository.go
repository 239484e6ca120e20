package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lager/internal/domain"

	"github.com/jmoiron/sqlx"
)

// importBatchSize keeps batched inserts well below the postgres parameter limit
const importBatchSize = 1000

// TransferRepository moves the whole inventory in and out in one step
type TransferRepository interface {
	Export(ctx context.Context) (*domain.Snapshot, error)
	Replace(ctx context.Context, categories []domain.Category, products []domain.Product) error
}

type transferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository creates a new instance of TransferRepository
func NewTransferRepository(db *sqlx.DB) TransferRepository {
	return &transferRepository{db: db}
}

// Export reads both tables from a single consistent snapshot
func (r *transferRepository) Export(ctx context.Context) (*domain.Snapshot, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot := &domain.Snapshot{
		Categories: []domain.Category{},
		Products:   []domain.Product{},
	}

	if err := tx.SelectContext(ctx, &snapshot.Categories, `SELECT id, name, slug FROM categories ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("failed to export categories: %w", err)
	}
	if err := tx.SelectContext(ctx, &snapshot.Products, `SELECT `+productColumns+` FROM products ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("failed to export products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finish export: %w", err)
	}

	return snapshot, nil
}

// Replace deletes every category and product and inserts the given sets with
// their IDs preserved. Nothing is changed unless every step succeeds.
func (r *transferRepository) Replace(ctx context.Context, categories []domain.Category, products []domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}

	if err := insertCategoriesInTx(ctx, tx, categories); err != nil {
		return err
	}
	if err := insertProductsInTx(ctx, tx, products); err != nil {
		return err
	}

	for _, table := range []string{"categories", "products"} {
		if err := resetSequenceInTx(ctx, tx, table); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	return nil
}

func insertCategoriesInTx(ctx context.Context, tx *sqlx.Tx, categories []domain.Category) error {
	query := `INSERT INTO categories (id, name, slug) VALUES (:id, :name, :slug)`
	for start := 0; start < len(categories); start += importBatchSize {
		end := min(start+importBatchSize, len(categories))
		if _, err := tx.NamedExecContext(ctx, query, categories[start:end]); err != nil {
			if isUniqueViolation(err, categoriesSlugKey) {
				return ErrDuplicateSlug
			}
			return fmt.Errorf("failed to import categories: %w", err)
		}
	}
	return nil
}

func insertProductsInTx(ctx context.Context, tx *sqlx.Tx, products []domain.Product) error {
	query := `
		INSERT INTO products (id, name, barcode, image, quantity, category_id)
		VALUES (:id, :name, :barcode, :image, :quantity, :category_id)
	`
	for start := 0; start < len(products); start += importBatchSize {
		end := min(start+importBatchSize, len(products))
		if _, err := tx.NamedExecContext(ctx, query, products[start:end]); err != nil {
			if isUniqueViolation(err, productsBarcodeKey) {
				return ErrDuplicateBarcode
			}
			return fmt.Errorf("failed to import products: %w", err)
		}
	}
	return nil
}

// resetSequenceInTx moves the serial sequence past the highest stored ID so
// later inserts do not collide with imported IDs
func resetSequenceInTx(ctx context.Context, tx *sqlx.Tx, table string) error {
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`,
		table,
	)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to reset %s id sequence: %w", table, err)
	}
	return nil
}
