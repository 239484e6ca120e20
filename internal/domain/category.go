package domain

// Category represents a product category. Slug is the external filter key.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// NewCategory holds the fields accepted when creating a category
type NewCategory struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// DefaultCategories are seeded when the category table is empty
var DefaultCategories = []NewCategory{
	{Name: "Lebensmittel", Slug: "lebensmittel"},
	{Name: "Getränke", Slug: "getranke"},
	{Name: "Haushalt", Slug: "haushalt"},
	{Name: "Sonstiges", Slug: "sonstiges"},
}
