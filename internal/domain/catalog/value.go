// Package catalog es la frontera anticorrupción entre las filas del store de taxonomías y los
// valores tipados que usan los demás contextos. Un CatalogValue solo existe si el ítem pertenece
// a la categoría esperada.
package catalog

import (
	"fmt"

	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
)

// CatalogValue proyección inmutable de un ítem resuelto, verificada contra su categoría.
type CatalogValue struct {
	id           string
	slug         string
	label        string
	categorySlug string
	metadata     entity.Metadata
	schema       Metadata
}

// FromItem construye el valor. Falla con domain.ErrCategoryMismatch si la categoría del ítem
// no es expectedCategorySlug, y con domain.ErrInvalidInput si la metadata no respeta el esquema.
func FromItem(item *entity.CatalogItem, expectedCategorySlug string) (CatalogValue, error) {
	if item == nil {
		return CatalogValue{}, fmt.Errorf("%w: ítem nulo", domain.ErrInvalidInput)
	}
	if item.CategorySlug != expectedCategorySlug {
		return CatalogValue{}, fmt.Errorf("%w: el ítem %q pertenece a la categoría %q, se esperaba %q",
			domain.ErrCategoryMismatch, item.Slug, item.CategorySlug, expectedCategorySlug)
	}
	schema, err := ParseMetadata(item.Metadata)
	if err != nil {
		return CatalogValue{}, fmt.Errorf("ítem %q: %w", item.Slug, err)
	}
	return CatalogValue{
		id:           item.ID,
		slug:         item.Slug,
		label:        item.Label,
		categorySlug: item.CategorySlug,
		metadata:     item.Metadata.Clone(),
		schema:       schema,
	}, nil
}

func (v CatalogValue) ID() string           { return v.id }
func (v CatalogValue) Slug() string         { return v.slug }
func (v CatalogValue) Label() string        { return v.label }
func (v CatalogValue) CategorySlug() string { return v.categorySlug }

// Metadata devuelve una copia del mapa original.
func (v CatalogValue) Metadata() entity.Metadata { return v.metadata.Clone() }

// Schema devuelve la vista tipada de la metadata.
func (v CatalogValue) Schema() Metadata {
	s := v.schema
	s.AllowedTransitions = append([]string(nil), v.schema.AllowedTransitions...)
	return s
}

// Equal compara por id.
func (v CatalogValue) Equal(other CatalogValue) bool {
	return v.id == other.id
}
