package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lager/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateSlug    = errors.New("category with this slug already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	SeedIfEmpty(ctx context.Context, defaults []domain.NewCategory) (int, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category and assigns its ID
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.db.QueryRowxContext(ctx, query, category.Name, category.Slug).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err, categoriesSlugKey) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves all categories in creation order
func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, slug
		FROM categories
		ORDER BY id ASC
	`

	categories := []domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// FindBySlug retrieves a category by its slug
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `
		SELECT id, name, slug
		FROM categories
		WHERE slug = $1
	`

	category := &domain.Category{}
	if err := r.db.GetContext(ctx, category, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}

	return category, nil
}

// SeedIfEmpty inserts the defaults when no category exists yet and returns
// the number of inserted rows. The table lock keeps concurrent starters from
// seeding twice.
func (r *categoryRepository) SeedIfEmpty(ctx context.Context, defaults []domain.NewCategory) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE categories IN EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("failed to lock categories: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 || len(defaults) == 0 {
		return 0, nil
	}

	if _, err := tx.NamedExecContext(ctx, `INSERT INTO categories (name, slug) VALUES (:name, :slug)`, toCategoryRows(defaults)); err != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}

	return len(defaults), nil
}

func toCategoryRows(in []domain.NewCategory) []domain.Category {
	rows := make([]domain.Category, len(in))
	for i, c := range in {
		rows[i] = domain.Category{Name: c.Name, Slug: c.Slug}
	}
	return rows
}
