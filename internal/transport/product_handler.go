package transport

import (
	"errors"
	"net/http"
	"strconv"

	"lager/internal/domain"
	"lager/internal/i18n"
	"lager/internal/middleware"
	"lager/internal/repository"
	"lager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name       string  `json:"name" validate:"required,notblank"`
	Barcode    string  `json:"barcode" validate:"required,notblank"`
	Image      *string `json:"image"`
	Quantity   *int    `json:"quantity" validate:"omitempty,gte=0"`
	CategoryID *int64  `json:"categoryId"`
}

// UpdateProductRequest is the allow-list of fields a PATCH may carry.
// Anything else in the body is ignored.
type UpdateProductRequest struct {
	Name       domain.Nullable[string] `json:"name"`
	Barcode    domain.Nullable[string] `json:"barcode"`
	Image      domain.Nullable[string] `json:"image"`
	Quantity   domain.Nullable[int]    `json:"quantity"`
	CategoryID domain.Nullable[int64]  `json:"categoryId"`
}

// Patch converts the request into a domain patch. Explicit nulls are only
// allowed for the optional fields.
func (req UpdateProductRequest) Patch() (domain.ProductPatch, error) {
	verr := &service.ValidationError{}
	for _, f := range []struct {
		field string
		null  bool
	}{
		{"name", req.Name.Set && !req.Name.Valid},
		{"barcode", req.Barcode.Set && !req.Barcode.Valid},
		{"quantity", req.Quantity.Set && !req.Quantity.Valid},
	} {
		if f.null {
			verr.Fields = append(verr.Fields, service.FieldError{Field: f.field, Code: service.CodeRequired})
		}
	}
	if len(verr.Fields) > 0 {
		return domain.ProductPatch{}, verr
	}

	return domain.ProductPatch{
		Name:       req.Name.Ptr(),
		Barcode:    req.Barcode.Ptr(),
		Image:      req.Image,
		Quantity:   req.Quantity.Ptr(),
		CategoryID: req.CategoryID,
	}, nil
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	inventory service.InventoryService
	respond   responder
	logger    *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(inventory service.InventoryService, tr *i18n.Translator, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		inventory: inventory,
		respond:   responder{tr: tr, logger: logger},
		logger:    logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/barcode/{barcode}", h.GetProductByBarcode)
		r.Get("/{id}", h.GetProduct)
		r.Patch("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListProducts handles GET /products?category=<slug>|search=<term>
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	products, err := h.inventory.ListProducts(r.Context(), service.ProductQuery{
		CategorySlug: query.Get("category"),
		Search:       query.Get("search"),
	})
	if err != nil {
		h.respond.fail(w, r, err, i18n.ProductsFetchFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.inventory.GetProduct(r.Context(), id)
	if err != nil {
		h.respond.fail(w, r, err, i18n.ProductFetchFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetProductByBarcode handles GET /products/barcode/{barcode}
func (h *ProductHandler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	code, ok := h.respond.barcodeParam(w, r)
	if !ok {
		return
	}

	product, err := h.inventory.GetProductByBarcode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, h.respond.message(r, i18n.ProductBarcodeNotFound))
			return
		}
		h.respond.fail(w, r, err, i18n.ProductFetchFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respond.decodeFailed(w, r, err)
		return
	}

	product, err := h.inventory.CreateProduct(r.Context(), domain.NewProduct{
		Name:       req.Name,
		Barcode:    req.Barcode,
		Image:      req.Image,
		Quantity:   req.Quantity,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.respond.fail(w, r, err, i18n.ProductCreateFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PATCH /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		h.respond.decodeFailed(w, r, err)
		return
	}

	patch, err := req.Patch()
	if err != nil {
		h.respond.fail(w, r, err, i18n.ProductUpdateFailed)
		return
	}

	product, err := h.inventory.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.respond.fail(w, r, err, i18n.ProductUpdateFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	deleted, err := h.inventory.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respond.fail(w, r, err, i18n.ProductDeleteFailed)
		return
	}
	if !deleted {
		middleware.RespondWithError(w, http.StatusNotFound, h.respond.message(r, i18n.ProductNotFound))
		return
	}

	middleware.RespondNoContent(w)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, h.respond.message(r, i18n.InvalidProductID))
		return 0, false
	}
	return id, true
}
