package entity

import "time"

// Category agrupa los valores configurables de una enumeración por tenant (ej. "squad status").
// Slug es único por tenant entre categorías no eliminadas.
type Category struct {
	ID            string
	TenantID      string
	Slug          string
	Name          string
	Description   *string
	ProductScoped bool // si sus ítems pueden asociarse a un producto
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time

	// Solo lectura: se rellenan cuando se piden los ítems.
	ItemsCount *int
	Items      []*CatalogItem
}

// IsDeleted indica si la categoría fue eliminada (soft delete).
func (c *Category) IsDeleted() bool {
	return c.DeletedAt != nil
}
