// Package i18n holds the user-facing message catalog.
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	CategoriesFetchFailed  = "categoriesFetchFailed"
	CategoryCreateFailed   = "categoryCreateFailed"
	CategorySlugExists     = "categorySlugExists"
	ProductsFetchFailed    = "productsFetchFailed"
	ProductFetchFailed     = "productFetchFailed"
	CategoryNotFound       = "categoryNotFound"
	ProductNotFound        = "productNotFound"
	ProductBarcodeNotFound = "productBarcodeNotFound"
	ProductBarcodeExists   = "productBarcodeExists"
	ProductCreateFailed    = "productCreateFailed"
	ProductUpdateFailed    = "productUpdateFailed"
	ProductDeleteFailed    = "productDeleteFailed"
	InvalidProductID       = "invalidProductId"
	InvalidBarcode         = "invalidBarcode"
	InvalidRequestBody     = "invalidRequestBody"
	ValidationFailed       = "validationFailed"
	ExportFailed           = "exportFailed"
	ImportFailed           = "importFailed"
	ImportSucceeded        = "importSucceeded"
	NoProductInfoFound     = "noProductInfoFound"
	RateLimitExceeded      = "rateLimitExceeded"
	InternalError          = "internalError"

	FieldRequired  = "fieldRequired"
	FieldNegative  = "fieldNegative"
	FieldTooLong   = "fieldTooLong"
	FieldDuplicate = "fieldDuplicate"
	FieldInvalid   = "fieldInvalid"
)

var entries = map[language.Tag]map[string]string{
	language.German: {
		CategoriesFetchFailed:  "Fehler beim Abrufen der Kategorien",
		CategoryCreateFailed:   "Fehler beim Erstellen der Kategorie",
		CategorySlugExists:     "Kategorie mit diesem Slug existiert bereits",
		ProductsFetchFailed:    "Fehler beim Abrufen der Produkte",
		ProductFetchFailed:     "Fehler beim Abrufen des Produkts",
		CategoryNotFound:       "Kategorie nicht gefunden",
		ProductNotFound:        "Produkt nicht gefunden",
		ProductBarcodeNotFound: "Produkt mit diesem Barcode nicht gefunden",
		ProductBarcodeExists:   "Produkt mit diesem Barcode existiert bereits",
		ProductCreateFailed:    "Fehler beim Erstellen des Produkts",
		ProductUpdateFailed:    "Fehler beim Aktualisieren des Produkts",
		ProductDeleteFailed:    "Fehler beim Löschen des Produkts",
		InvalidProductID:       "Ungültige Produkt-ID",
		InvalidBarcode:         "Ungültiger Barcode",
		InvalidRequestBody:     "Ungültiger Anfrageinhalt",
		ValidationFailed:       "Validierung fehlgeschlagen",
		ExportFailed:           "Fehler beim Exportieren der Daten",
		ImportFailed:           "Fehler beim Importieren der Daten",
		ImportSucceeded:        "Daten erfolgreich importiert",
		NoProductInfoFound:     "Keine Produktinformationen gefunden",
		RateLimitExceeded:      "Zu viele Anfragen, bitte später erneut versuchen",
		InternalError:          "Interner Serverfehler",
		FieldRequired:          "Dieses Feld ist erforderlich",
		FieldNegative:          "Der Wert darf nicht negativ sein",
		FieldTooLong:           "Der Wert ist zu lang",
		FieldDuplicate:         "Der Wert kommt mehrfach vor",
		FieldInvalid:           "Ungültiger Wert",
	},
	language.English: {
		CategoriesFetchFailed:  "Failed to fetch categories",
		CategoryCreateFailed:   "Failed to create category",
		CategorySlugExists:     "A category with this slug already exists",
		ProductsFetchFailed:    "Failed to fetch products",
		ProductFetchFailed:     "Failed to fetch product",
		CategoryNotFound:       "Category not found",
		ProductNotFound:        "Product not found",
		ProductBarcodeNotFound: "No product with this barcode",
		ProductBarcodeExists:   "A product with this barcode already exists",
		ProductCreateFailed:    "Failed to create product",
		ProductUpdateFailed:    "Failed to update product",
		ProductDeleteFailed:    "Failed to delete product",
		InvalidProductID:       "Invalid product ID",
		InvalidBarcode:         "Invalid barcode",
		InvalidRequestBody:     "Invalid request body",
		ValidationFailed:       "Validation failed",
		ExportFailed:           "Failed to export data",
		ImportFailed:           "Failed to import data",
		ImportSucceeded:        "Data imported successfully",
		NoProductInfoFound:     "No product information found",
		RateLimitExceeded:      "Too many requests, please try again later",
		InternalError:          "Internal server error",
		FieldRequired:          "This field is required",
		FieldNegative:          "Value must not be negative",
		FieldTooLong:           "Value is too long",
		FieldDuplicate:         "Value occurs more than once",
		FieldInvalid:           "Invalid value",
	},
}

// Translator resolves message keys for a request's preferred language
type Translator struct {
	catalog  catalog.Catalog
	fallback language.Tag
	matcher  language.Matcher
	tags     []language.Tag
}

// New builds a translator whose fallback is the configured locale
func New(locale string) *Translator {
	builder := catalog.NewBuilder()
	for tag, msgs := range entries {
		for key, text := range msgs {
			// Messages carry no format verbs, so the key is used as-is
			_ = builder.SetString(tag, key, text)
		}
	}

	supported := []language.Tag{language.German, language.English}

	// Unsupported or malformed locales fall back to German
	fallback := language.German
	if tag, err := language.Parse(locale); err == nil {
		_, index, confidence := language.NewMatcher(supported).Match(tag)
		if confidence != language.No {
			fallback = supported[index]
		}
	}

	tags := append([]language.Tag{fallback}, supported...)
	return &Translator{
		catalog:  builder,
		fallback: fallback,
		matcher:  language.NewMatcher(tags),
		tags:     tags,
	}
}

// Default returns the configured locale
func (t *Translator) Default() language.Tag {
	return t.fallback
}

// Lang picks the best supported language for an Accept-Language header
func (t *Translator) Lang(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return t.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.fallback
	}
	_, index, confidence := t.matcher.Match(prefs...)
	if confidence == language.No {
		return t.fallback
	}
	return t.tags[index]
}

// Message returns the text for key in lang
func (t *Translator) Message(lang language.Tag, key string) string {
	p := message.NewPrinter(lang, message.Catalog(t.catalog))
	return p.Sprintf(key)
}

// ForRequest returns the text for key in the request's preferred language
func (t *Translator) ForRequest(r *http.Request, key string) string {
	return t.Message(t.Lang(r.Header.Get("Accept-Language")), key)
}
