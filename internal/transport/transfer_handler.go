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

// MessageResponse carries a plain confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// TransferHandler serves whole-inventory export and import
type TransferHandler struct {
	inventory service.InventoryService
	respond   responder
	logger    *zap.Logger
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(inventory service.InventoryService, tr *i18n.Translator, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		inventory: inventory,
		respond:   responder{tr: tr, logger: logger},
		logger:    logger,
	}
}

// RegisterRoutes registers export and import routes
func (h *TransferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
}

// Export handles GET /export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.inventory.ExportData(r.Context())
	if err != nil {
		h.respond.fail(w, r, err, i18n.ExportFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, snapshot)
}

// Import handles POST /import. The body has the export shape.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	var data domain.ImportData
	if err := middleware.DecodeJSON(r, &data); err != nil {
		h.respond.decodeFailed(w, r, err)
		return
	}

	if err := h.inventory.ImportData(r.Context(), data); err != nil {
		h.respond.fail(w, r, err, i18n.ImportFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: h.respond.message(r, i18n.ImportSucceeded),
	})
}
