package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lager/internal/barcode"
	"lager/internal/domain"
	"lager/internal/repository"

	"go.uber.org/zap"
)

// ProductQuery selects products for a listing. CategorySlug wins over Search.
type ProductQuery struct {
	CategorySlug string
	Search       string
}

// InventoryService is the authority over categories and products
type InventoryService interface {
	Bootstrap(ctx context.Context) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	CreateCategory(ctx context.Context, in domain.NewCategory) (*domain.Category, error)

	ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByBarcode(ctx context.Context, code string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)

	ExportData(ctx context.Context) (*domain.Snapshot, error)
	ImportData(ctx context.Context, data domain.ImportData) error
}

type inventoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	transferRepo repository.TransferRepository
	logger       *zap.Logger
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	transferRepo repository.TransferRepository,
	logger *zap.Logger,
) InventoryService {
	return &inventoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// Bootstrap seeds the default categories when none exist. Must run before
// the service handles requests.
func (s *inventoryService) Bootstrap(ctx context.Context) error {
	inserted, err := s.categoryRepo.SeedIfEmpty(ctx, domain.DefaultCategories)
	if err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}
	if inserted > 0 {
		s.logger.Info("Seeded default categories", zap.Int("count", inserted))
	}
	return nil
}

func (s *inventoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *inventoryService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categoryRepo.FindBySlug(ctx, slug)
}

// CreateCategory relies on the store's unique slug constraint
func (s *inventoryService) CreateCategory(ctx context.Context, in domain.NewCategory) (*domain.Category, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", CodeRequired)
	}
	if strings.TrimSpace(in.Slug) == "" {
		verr.add("slug", CodeRequired)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	category := &domain.Category{Name: in.Name, Slug: in.Slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created", zap.Int64("category_id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

// ListProducts resolves a category slug to its ID before filtering. An
// unknown slug yields an empty list.
func (s *inventoryService) ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	filter := repository.ProductFilter{Search: strings.TrimSpace(q.Search)}

	if q.CategorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, q.CategorySlug)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return []domain.Product{}, nil
			}
			return nil, err
		}
		filter.CategoryID = &category.ID
	}

	return s.productRepo.List(ctx, filter)
}

func (s *inventoryService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *inventoryService) GetProductByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	return s.productRepo.FindByBarcode(ctx, barcode.Normalize(code))
}

// CreateProduct checks barcode uniqueness up front so callers get
// ErrDuplicateBarcode rather than a raw constraint failure
func (s *inventoryService) CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error) {
	in.Barcode = barcode.Normalize(in.Barcode)

	product := in.Product()
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.ensureBarcodeFree(ctx, product.Barcode, 0); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, &product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("barcode", product.Barcode),
	)
	return &product, nil
}

// UpdateProduct merges only the fields present in patch
func (s *inventoryService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Barcode != nil {
		normalized := barcode.Normalize(*patch.Barcode)
		patch.Barcode = &normalized
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*existing)
	if err := validateProduct(updated); err != nil {
		return nil, err
	}

	if updated.Barcode != existing.Barcode {
		if err := s.ensureBarcodeFree(ctx, updated.Barcode, id); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return &updated, nil
}

// DeleteProduct reports false when no product had the given ID
func (s *inventoryService) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return false, nil
		}
		return false, err
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return true, nil
}

func (s *inventoryService) ExportData(ctx context.Context) (*domain.Snapshot, error) {
	return s.transferRepo.Export(ctx)
}

// ImportData replaces the whole inventory with data. Products missing
// optional fields get their defaults. The payload is rejected as a whole if
// any record is invalid.
func (s *inventoryService) ImportData(ctx context.Context, data domain.ImportData) error {
	categories, products, err := normalizeImport(data)
	if err != nil {
		return err
	}

	if err := s.transferRepo.Replace(ctx, categories, products); err != nil {
		s.logger.Error("Import failed", zap.Error(err))
		return err
	}

	s.logger.Info("Inventory imported",
		zap.Int("categories", len(categories)),
		zap.Int("products", len(products)),
	)
	return nil
}

func (s *inventoryService) ensureBarcodeFree(ctx context.Context, code string, selfID int64) error {
	other, err := s.productRepo.FindByBarcode(ctx, code)
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check barcode: %w", err)
	case other.ID != selfID:
		return repository.ErrDuplicateBarcode
	}
	return nil
}

// validateProduct enforces the stored-record invariants, including the
// non-negative quantity floor
func validateProduct(p domain.Product) error {
	verr := &ValidationError{}
	validateProductInto(verr, "", p)
	return verr.orNil()
}

func validateProductInto(verr *ValidationError, prefix string, p domain.Product) {
	if strings.TrimSpace(p.Name) == "" {
		verr.add(prefix+"name", CodeRequired)
	}
	switch {
	case p.Barcode == "":
		verr.add(prefix+"barcode", CodeRequired)
	case len(p.Barcode) > barcode.MaxLength:
		verr.add(prefix+"barcode", CodeTooLong)
	case !barcode.Valid(p.Barcode):
		verr.add(prefix+"barcode", CodeInvalid)
	}
	if p.Quantity < 0 {
		verr.add(prefix+"quantity", CodeNegative)
	}
}

func normalizeImport(data domain.ImportData) ([]domain.Category, []domain.Product, error) {
	verr := &ValidationError{}

	categoryIDs := make(map[int64]bool, len(data.Categories))
	slugs := make(map[string]bool, len(data.Categories))
	categories := make([]domain.Category, 0, len(data.Categories))
	for i, c := range data.Categories {
		prefix := fmt.Sprintf("categories[%d].", i)
		if c.ID <= 0 {
			verr.add(prefix+"id", CodeInvalid)
		} else if categoryIDs[c.ID] {
			verr.add(prefix+"id", CodeDuplicate)
		}
		if strings.TrimSpace(c.Name) == "" {
			verr.add(prefix+"name", CodeRequired)
		}
		if strings.TrimSpace(c.Slug) == "" {
			verr.add(prefix+"slug", CodeRequired)
		} else if slugs[c.Slug] {
			verr.add(prefix+"slug", CodeDuplicate)
		}
		categoryIDs[c.ID] = true
		slugs[c.Slug] = true
		categories = append(categories, c)
	}

	productIDs := make(map[int64]bool, len(data.Products))
	codes := make(map[string]bool, len(data.Products))
	products := make([]domain.Product, 0, len(data.Products))
	for i, raw := range data.Products {
		prefix := fmt.Sprintf("products[%d].", i)
		raw.Barcode = barcode.Normalize(raw.Barcode)
		p := raw.Product()

		if p.ID <= 0 {
			verr.add(prefix+"id", CodeInvalid)
		} else if productIDs[p.ID] {
			verr.add(prefix+"id", CodeDuplicate)
		}
		validateProductInto(verr, prefix, p)
		if p.Barcode != "" && codes[p.Barcode] {
			verr.add(prefix+"barcode", CodeDuplicate)
		}
		productIDs[p.ID] = true
		codes[p.Barcode] = true
		products = append(products, p)
	}

	if err := verr.orNil(); err != nil {
		return nil, nil, err
	}
	return categories, products, nil
}
