package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lager/internal/domain"
	"lager/internal/i18n"
	"lager/internal/lookup"
	"lager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errStore = errors.New("connection refused")

// stubInventory implements service.InventoryService with per-test functions
type stubInventory struct {
	listCategories func(ctx context.Context) ([]domain.Category, error)
	getCategory    func(ctx context.Context, slug string) (*domain.Category, error)
	createCategory func(ctx context.Context, in domain.NewCategory) (*domain.Category, error)
	listProducts   func(ctx context.Context, q service.ProductQuery) ([]domain.Product, error)
	getProduct     func(ctx context.Context, id int64) (*domain.Product, error)
	getByBarcode   func(ctx context.Context, code string) (*domain.Product, error)
	createProduct  func(ctx context.Context, in domain.NewProduct) (*domain.Product, error)
	updateProduct  func(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	deleteProduct  func(ctx context.Context, id int64) (bool, error)
	exportData     func(ctx context.Context) (*domain.Snapshot, error)
	importData     func(ctx context.Context, data domain.ImportData) error
}

func (s *stubInventory) Bootstrap(ctx context.Context) error { return nil }

func (s *stubInventory) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.listCategories(ctx)
}

func (s *stubInventory) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.getCategory(ctx, slug)
}

func (s *stubInventory) CreateCategory(ctx context.Context, in domain.NewCategory) (*domain.Category, error) {
	return s.createCategory(ctx, in)
}

func (s *stubInventory) ListProducts(ctx context.Context, q service.ProductQuery) ([]domain.Product, error) {
	return s.listProducts(ctx, q)
}

func (s *stubInventory) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.getProduct(ctx, id)
}

func (s *stubInventory) GetProductByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	return s.getByBarcode(ctx, code)
}

func (s *stubInventory) CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error) {
	return s.createProduct(ctx, in)
}

func (s *stubInventory) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	return s.updateProduct(ctx, id, patch)
}

func (s *stubInventory) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	return s.deleteProduct(ctx, id)
}

func (s *stubInventory) ExportData(ctx context.Context) (*domain.Snapshot, error) {
	return s.exportData(ctx)
}

func (s *stubInventory) ImportData(ctx context.Context, data domain.ImportData) error {
	return s.importData(ctx, data)
}

type stubLookup struct {
	results map[string]lookup.Result
}

func (s stubLookup) Lookup(ctx context.Context, code string) (lookup.Result, bool) {
	r, ok := s.results[code]
	return r, ok
}

// newTestRouter mounts every handler under /api the way the server does
func newTestRouter(inv service.InventoryService, l Lookuper) http.Handler {
	tr := i18n.New("de")
	logger := zap.NewNop()

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewCategoryHandler(inv, tr, logger).RegisterRoutes(r)
		NewProductHandler(inv, tr, logger).RegisterRoutes(r)
		NewTransferHandler(inv, tr, logger).RegisterRoutes(r)
		NewLookupHandler(l, tr, logger).RegisterRoutes(r)
	})
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
