package service

import (
	"context"
	"sort"
	"strings"

	"lager/internal/domain"
	"lager/internal/repository"
)

// memState backs the mock repositories so they observe each other's writes
type memState struct {
	categories     map[int64]domain.Category
	products       map[int64]domain.Product
	nextCategoryID int64
	nextProductID  int64
	failReplace    error
}

func newMemState() *memState {
	return &memState{
		categories:     make(map[int64]domain.Category),
		products:       make(map[int64]domain.Product),
		nextCategoryID: 1,
		nextProductID:  1,
	}
}

type mockCategoryRepository struct{ s *memState }

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.s.categories {
		if c.Slug == category.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	category.ID = m.s.nextCategoryID
	m.s.nextCategoryID++
	m.s.categories[category.ID] = *category
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range m.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range m.s.categories {
		if c.Slug == slug {
			found := c
			return &found, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) SeedIfEmpty(ctx context.Context, defaults []domain.NewCategory) (int, error) {
	if len(m.s.categories) > 0 {
		return 0, nil
	}
	for _, d := range defaults {
		if err := m.Create(ctx, &domain.Category{Name: d.Name, Slug: d.Slug}); err != nil {
			return 0, err
		}
	}
	return len(defaults), nil
}

type mockProductRepository struct{ s *memState }

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.s.products {
		if p.Barcode == product.Barcode {
			return repository.ErrDuplicateBarcode
		}
	}
	product.ID = m.s.nextProductID
	m.s.nextProductID++
	m.s.products[product.ID] = *product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.s.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	for _, p := range m.s.products {
		if p.Barcode == product.Barcode && p.ID != product.ID {
			return repository.ErrDuplicateBarcode
		}
	}
	m.s.products[product.ID] = *product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.s.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockProductRepository) FindByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	for _, p := range m.s.products {
		if p.Barcode == code {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range m.s.products {
		switch {
		case filter.CategoryID != nil:
			if p.CategoryID == nil || *p.CategoryID != *filter.CategoryID {
				continue
			}
		case strings.TrimSpace(filter.Search) != "":
			if !p.MatchesSearch(filter.Search) {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockTransferRepository struct{ s *memState }

func (m *mockTransferRepository) Export(ctx context.Context) (*domain.Snapshot, error) {
	categories, _ := (&mockCategoryRepository{m.s}).List(ctx)
	products, _ := (&mockProductRepository{m.s}).List(ctx, repository.ProductFilter{})
	return &domain.Snapshot{Categories: categories, Products: products}, nil
}

func (m *mockTransferRepository) Replace(ctx context.Context, categories []domain.Category, products []domain.Product) error {
	if m.s.failReplace != nil {
		return m.s.failReplace
	}
	m.s.categories = make(map[int64]domain.Category)
	m.s.products = make(map[int64]domain.Product)
	m.s.nextCategoryID, m.s.nextProductID = 1, 1
	for _, c := range categories {
		m.s.categories[c.ID] = c
		m.s.nextCategoryID = max(m.s.nextCategoryID, c.ID+1)
	}
	for _, p := range products {
		m.s.products[p.ID] = p
		m.s.nextProductID = max(m.s.nextProductID, p.ID+1)
	}
	return nil
}
