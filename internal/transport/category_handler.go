package transport

import (
	"net/http"

	"lager/internal/domain"
	"lager/internal/i18n"
	"lager/internal/middleware"
	"lager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=200"`
	Slug string `json:"slug" validate:"required,slug,max=200"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	inventory service.InventoryService
	respond   responder
	logger    *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(inventory service.InventoryService, tr *i18n.Translator, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		inventory: inventory,
		respond:   responder{tr: tr, logger: logger},
		logger:    logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{slug}", h.GetCategory)
	})
}

// ListCategories handles GET /categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.inventory.ListCategories(r.Context())
	if err != nil {
		h.respond.fail(w, r, err, i18n.CategoriesFetchFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /categories/{slug}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.inventory.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respond.fail(w, r, err, i18n.CategoriesFetchFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respond.decodeFailed(w, r, err)
		return
	}

	category, err := h.inventory.CreateCategory(r.Context(), domain.NewCategory{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		h.respond.fail(w, r, err, i18n.CategoryCreateFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}
