package dto

import "time"

// CreateCategoryRequest entrada para crear una categoría. Slug se deriva de Name si falta.
type CreateCategoryRequest struct {
	Name          string  `json:"name"`
	Slug          *string `json:"slug"`
	Description   *string `json:"description"`
	ProductScoped bool    `json:"productScoped"`
}

// UpdateCategoryRequest actualización parcial: solo cambian los campos presentes.
type UpdateCategoryRequest struct {
	Name          *string `json:"name"`
	Slug          *string `json:"slug"`
	Description   *string `json:"description"`
	ProductScoped *bool   `json:"productScoped"`
}

// ListCategoriesQuery filtros de listado; los nombres de query siguen el contrato externo.
type ListCategoriesQuery struct {
	Search               string `query:"search"`
	Slug                 string `query:"slug"`
	Context              string `query:"context"` // prefijo de slug
	IncludeDeleted       bool   `query:"includeDeleted"`
	IncludeItens         bool   `query:"includeItens"`
	IncludeItensDeleted  bool   `query:"includeItensDeleted"`
	IncludeItensInativos bool   `query:"includeItensInativos"`
	Page                 int    `query:"page"`
	PageSize             int    `query:"pageSize"`
	OrderBy              string `query:"orderBy"`
	OrderDirection       string `query:"orderDirection"`
}

// GetCategoryQuery inclusión de ítems para lecturas individuales.
type GetCategoryQuery struct {
	IncludeItens         bool `query:"includeItens"`
	IncludeItensDeleted  bool `query:"includeItensDeleted"`
	IncludeItensInativos bool `query:"includeItensInativos"`
	IncludeDeleted       bool `query:"includeDeleted"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	ProductScoped bool            `json:"productScoped"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     *time.Time      `json:"deletedAt"`
	ItemsCount    *int            `json:"itemsCount,omitempty"`
	Items         *[]ItemResponse `json:"items,omitempty"`
}

// CreateItemRequest entrada para crear un ítem. Order se calcula si falta; Active por defecto true.
type CreateItemRequest struct {
	Label       string         `json:"label"`
	Slug        *string        `json:"slug"`
	Description *string        `json:"description"`
	Order       *int           `json:"order"`
	Active      *bool          `json:"active"`
	ProductID   *string        `json:"productId"`
	Metadata    map[string]any `json:"metadata"`
}

// UpdateItemRequest actualización parcial. Metadata no nula REEMPLAZA la anterior (no se mezcla):
// el llamador debe reenviar las claves que quiera conservar.
type UpdateItemRequest struct {
	Label          *string        `json:"label"`
	Slug           *string        `json:"slug"`
	Description    *string        `json:"description"`
	Order          *int           `json:"order"`
	Active         *bool          `json:"active"`
	ProductID      *string        `json:"productId"`
	ClearProductID bool           `json:"clearProductId"`
	Metadata       map[string]any `json:"metadata"`
}

// ListItemsQuery filtros de listado de ítems de una categoría.
type ListItemsQuery struct {
	ProdutoID       string `query:"produtoId"`
	IncludeInativos bool   `query:"includeInativos"`
	IncludeDeleted  bool   `query:"includeDeleted"`
	Search          string `query:"search"`
	Page            int    `query:"page"`
	PageSize        int    `query:"pageSize"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenantId"`
	CategoryID   string         `json:"categoryId"`
	CategorySlug string         `json:"categorySlug"`
	Slug         string         `json:"slug"`
	Label        string         `json:"label"`
	Description  *string        `json:"description"`
	Order        int            `json:"order"`
	Active       bool           `json:"active"`
	Metadata     map[string]any `json:"metadata"`
	ProductID    *string        `json:"productId"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    *time.Time     `json:"deletedAt"`
}

// CategoryListResponse página de categorías.
type CategoryListResponse = PageResponse[CategoryResponse]

// ItemListResponse página de ítems.
type ItemListResponse = PageResponse[ItemResponse]
