package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lager/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateBarcode = errors.New("product with this barcode already exists")
)

const productColumns = `id, name, barcode, image, quantity, category_id`

// ProductFilter narrows a product listing. At most one field is honored,
// CategoryID taking precedence over Search.
type ProductFilter struct {
	CategoryID *int64
	Search     string
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product and assigns its ID
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, barcode, image, quantity, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Barcode,
		product.Image,
		product.Quantity,
		product.CategoryID,
	).Scan(&product.ID)

	if err != nil {
		if isUniqueViolation(err, productsBarcodeKey) {
			return ErrDuplicateBarcode
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites every column of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = :name, barcode = :barcode, image = :image,
		    quantity = :quantity, category_id = :category_id
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, product)
	if err != nil {
		if isUniqueViolation(err, productsBarcodeKey) {
			return ErrDuplicateBarcode
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product by ID
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// FindByBarcode retrieves a product by its exact barcode
func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
}

func (r *productRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Product, error) {
	product := &domain.Product{}
	if err := r.db.GetContext(ctx, product, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// List retrieves products ordered by ID, optionally filtered by category or
// by a case-insensitive substring of name or barcode
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}

	switch {
	case filter.CategoryID != nil:
		query += ` WHERE category_id = $1`
		args = append(args, *filter.CategoryID)
	case strings.TrimSpace(filter.Search) != "":
		query += ` WHERE name ILIKE $1 ESCAPE '\' OR barcode ILIKE $1 ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	query += ` ORDER BY id ASC`

	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
