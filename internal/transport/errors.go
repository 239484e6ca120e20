package transport

import (
	"errors"
	"net/http"
	"net/url"

	"lager/internal/i18n"
	"lager/internal/middleware"
	"lager/internal/repository"
	"lager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var codeMessages = map[string]string{
	service.CodeRequired:  i18n.FieldRequired,
	service.CodeNegative:  i18n.FieldNegative,
	service.CodeTooLong:   i18n.FieldTooLong,
	service.CodeDuplicate: i18n.FieldDuplicate,
	service.CodeInvalid:   i18n.FieldInvalid,
}

// responder turns errors into localized JSON error responses
type responder struct {
	tr     *i18n.Translator
	logger *zap.Logger
}

func (rs responder) message(r *http.Request, key string) string {
	return rs.tr.ForRequest(r, key)
}

// barcodeParam returns the unescaped {barcode} path segment. chi matches on
// the raw path when it holds an encoded slash, so the segment may still be
// percent-encoded.
func (rs responder) barcodeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	code, err := url.PathUnescape(chi.URLParam(r, "barcode"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, rs.message(r, i18n.InvalidBarcode))
		return "", false
	}
	return code, true
}

// fail maps err onto a status code. fallbackKey names the message used for
// unexpected failures.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error, fallbackKey string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		rs.logger.Debug("Validation failed", zap.Error(err), zap.String("path", r.URL.Path))
		rs.validation(w, r, verr.Fields)
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, rs.message(r, i18n.ProductNotFound))
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, rs.message(r, i18n.CategoryNotFound))
	case errors.Is(err, repository.ErrDuplicateBarcode):
		rs.logger.Debug("Duplicate barcode rejected", zap.String("path", r.URL.Path))
		middleware.RespondWithError(w, http.StatusConflict, rs.message(r, i18n.ProductBarcodeExists))
	case errors.Is(err, repository.ErrDuplicateSlug):
		rs.logger.Debug("Duplicate slug rejected", zap.String("path", r.URL.Path))
		middleware.RespondWithError(w, http.StatusConflict, rs.message(r, i18n.CategorySlugExists))
	default:
		rs.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, rs.message(r, fallbackKey))
	}
}

func (rs responder) validation(w http.ResponseWriter, r *http.Request, fields []service.FieldError) {
	errs := make([]middleware.ValidationError, 0, len(fields))
	for _, f := range fields {
		key, ok := codeMessages[f.Code]
		if !ok {
			key = i18n.FieldInvalid
		}
		errs = append(errs, middleware.ValidationError{Field: f.Field, Message: rs.message(r, key)})
	}
	middleware.RespondWithValidationErrors(w, rs.message(r, i18n.ValidationFailed), errs)
}

// decodeFailed answers a body that could not be decoded or failed tag validation
func (rs responder) decodeFailed(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.Debug("Request body rejected", zap.Error(err), zap.String("path", r.URL.Path))

	if errs := middleware.FormatValidationErrors(err, rs.tr, r); len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, rs.message(r, i18n.ValidationFailed), errs)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, rs.message(r, i18n.InvalidRequestBody))
}
