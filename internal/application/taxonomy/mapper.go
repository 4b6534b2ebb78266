package taxonomy

import (
	"strings"

	"github.com/jhoicas/taxonomia-api/internal/application/dto"
	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
)

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	out := &dto.CategoryResponse{
		ID:            c.ID,
		TenantID:      c.TenantID,
		Slug:          c.Slug,
		Name:          c.Name,
		Description:   c.Description,
		ProductScoped: c.ProductScoped,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		DeletedAt:     c.DeletedAt,
		ItemsCount:    c.ItemsCount,
	}
	if c.Items != nil {
		items := make([]dto.ItemResponse, 0, len(c.Items))
		for _, it := range c.Items {
			items = append(items, *toItemResponse(it))
		}
		out.Items = &items
	}
	return out
}

func toItemResponse(i *entity.CatalogItem) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	md := map[string]any(i.Metadata.Clone())
	if md == nil {
		md = map[string]any{}
	}
	return &dto.ItemResponse{
		ID:           i.ID,
		TenantID:     i.TenantID,
		CategoryID:   i.CategoryID,
		CategorySlug: i.CategorySlug,
		Slug:         i.Slug,
		Label:        i.Label,
		Description:  i.Description,
		Order:        i.Order,
		Active:       i.Active,
		Metadata:     md,
		ProductID:    i.ProductID,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
		DeletedAt:    i.DeletedAt,
	}
}

// trimmedOrNil recorta s; una cadena vacía se guarda como NULL.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
