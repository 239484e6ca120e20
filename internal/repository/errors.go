package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode = "23505"

	productsBarcodeKey = "products_barcode_key"
	categoriesSlugKey  = "categories_slug_key"
)

// isUniqueViolation reports whether err is a unique constraint failure on the
// named constraint
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint
}
