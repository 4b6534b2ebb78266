package entity

import "time"

// Metadata mapa opaco clave→valor de un ítem. El store no lo interpreta.
type Metadata map[string]any

// Clone devuelve una copia superficial (nil se conserva como nil).
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CatalogItem es un valor dentro de una categoría (ej. "ativo" en "squad status").
// Slug es único por (TenantID, CategoryID) entre ítems no eliminados; Order es solo una pista de orden.
type CatalogItem struct {
	ID           string
	TenantID     string
	CategoryID   string
	CategorySlug string // solo lectura, resuelto por join con la categoría
	Slug         string
	Label        string
	Description  *string
	Order        int
	Active       bool
	Metadata     Metadata
	ProductID    *string // solo válido si la categoría es ProductScoped
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsDeleted indica si el ítem fue eliminado (soft delete).
func (i *CatalogItem) IsDeleted() bool {
	return i.DeletedAt != nil
}
