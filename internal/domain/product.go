package domain

import "strings"

// DefaultQuantity is the stock count a product starts with when none is given
const DefaultQuantity = 1

// Product represents a cataloged inventory item. Barcode is the business key.
type Product struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Barcode    string  `json:"barcode" db:"barcode"`
	Image      *string `json:"image" db:"image"`
	Quantity   int     `json:"quantity" db:"quantity"`
	CategoryID *int64  `json:"categoryId" db:"category_id"`
}

// NewProduct holds the fields accepted when creating a product
type NewProduct struct {
	Name       string  `json:"name"`
	Barcode    string  `json:"barcode"`
	Image      *string `json:"image,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
	CategoryID *int64  `json:"categoryId,omitempty"`
}

// ProductPatch is a partial update. Only fields that are set are applied.
type ProductPatch struct {
	Name       *string          `json:"name,omitempty"`
	Barcode    *string          `json:"barcode,omitempty"`
	Image      Nullable[string] `json:"image,omitzero"`
	Quantity   *int             `json:"quantity,omitempty"`
	CategoryID Nullable[int64]  `json:"categoryId,omitzero"`
}

// IsEmpty reports whether the patch carries no field at all
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Barcode == nil && !p.Image.Set && p.Quantity == nil && !p.CategoryID.Set
}

// Apply merges the patch onto a copy of the product and returns it
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Barcode != nil {
		product.Barcode = *p.Barcode
	}
	if p.Image.Set {
		product.Image = p.Image.Ptr()
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	if p.CategoryID.Set {
		product.CategoryID = p.CategoryID.Ptr()
	}
	return product
}

// Product builds the product that would be stored for this input,
// filling defaults for omitted optional fields.
func (n NewProduct) Product() Product {
	quantity := DefaultQuantity
	if n.Quantity != nil {
		quantity = *n.Quantity
	}
	return Product{
		Name:       n.Name,
		Barcode:    n.Barcode,
		Image:      n.Image,
		Quantity:   quantity,
		CategoryID: n.CategoryID,
	}
}

// MatchesSearch reports whether term is a case-insensitive substring of the
// product name or barcode.
func (p Product) MatchesSearch(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Barcode), term)
}
