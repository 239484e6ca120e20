package domain

// Snapshot is the full export of the inventory
type Snapshot struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// ImportProduct is a product as it may appear in an import file.
// Optional fields may be missing and are normalized by Product.
type ImportProduct struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Barcode    string  `json:"barcode"`
	Image      *string `json:"image"`
	Quantity   *int    `json:"quantity"`
	CategoryID *int64  `json:"categoryId"`
}

// Product normalizes missing optional fields to their defaults
func (p ImportProduct) Product() Product {
	quantity := DefaultQuantity
	if p.Quantity != nil {
		quantity = *p.Quantity
	}
	return Product{
		ID:         p.ID,
		Name:       p.Name,
		Barcode:    p.Barcode,
		Image:      p.Image,
		Quantity:   quantity,
		CategoryID: p.CategoryID,
	}
}

// ImportData is the payload accepted by a wholesale import
type ImportData struct {
	Categories []Category      `json:"categories"`
	Products   []ImportProduct `json:"products"`
}
