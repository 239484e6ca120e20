package transport

import (
	"context"
	"net/http"

	"lager/internal/i18n"
	"lager/internal/lookup"
	"lager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Lookuper resolves a barcode to advisory product details
type Lookuper interface {
	Lookup(ctx context.Context, code string) (lookup.Result, bool)
}

// LookupHandler proxies the external product catalog
type LookupHandler struct {
	lookup  Lookuper
	respond responder
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(l Lookuper, tr *i18n.Translator, logger *zap.Logger) *LookupHandler {
	return &LookupHandler{
		lookup:  l,
		respond: responder{tr: tr, logger: logger},
	}
}

// RegisterRoutes registers the lookup route
func (h *LookupHandler) RegisterRoutes(r chi.Router) {
	r.Get("/lookup/{barcode}", h.Lookup)
}

// Lookup handles GET /lookup/{barcode}
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code, ok := h.respond.barcodeParam(w, r)
	if !ok {
		return
	}

	result, found := h.lookup.Lookup(r.Context(), code)
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, h.respond.message(r, i18n.NoProductInfoFound))
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
