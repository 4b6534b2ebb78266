package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taxonomia-api/internal/application/dto"
	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
	"github.com/jhoicas/taxonomia-api/internal/domain/repository"
	"github.com/jhoicas/taxonomia-api/pkg/logger"
	"github.com/jhoicas/taxonomia-api/pkg/slug"
)

var categorySortFields = map[string]string{
	"":                               repository.CategorySortName,
	repository.CategorySortName:      repository.CategorySortName,
	repository.CategorySortSlug:      repository.CategorySortSlug,
	repository.CategorySortCreatedAt: repository.CategorySortCreatedAt,
	repository.CategorySortUpdatedAt: repository.CategorySortUpdatedAt,
}

// CategoryUseCase ciclo de vida de categorías. El borrado cascadea a los ítems en una transacción.
type CategoryUseCase struct {
	categories repository.CategoryRepository
	items      repository.ItemRepository
	tx         repository.TxRunner
	log        *logger.Logger
	paging     Paging
	now        func() time.Time
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(
	categories repository.CategoryRepository,
	items repository.ItemRepository,
	tx repository.TxRunner,
	log *logger.Logger,
	paging Paging,
) *CategoryUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CategoryUseCase{
		categories: categories,
		items:      items,
		tx:         tx,
		log:        log.Component("category_usecase"),
		paging:     paging,
		now:        time.Now,
	}
}

// Create crea una categoría. El slug se deriva del nombre si no se envía.
func (uc *CategoryUseCase) Create(ctx context.Context, tenantID string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	s := slug.FromOptional(in.Slug, name)
	if s == "" {
		return nil, fmt.Errorf("%w: el slug de la categoría queda vacío al normalizar", domain.ErrInvalidInput)
	}

	now := uc.now().UTC()
	category := &entity.Category{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		Slug:          s,
		Name:          name,
		Description:   trimmedOrNil(in.Description),
		ProductScoped: in.ProductScoped,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("category_id", category.ID).
		Str("slug", category.Slug).
		Msg("categoría creada")
	return toCategoryResponse(category), nil
}

// Update aplica solo los campos enviados. Corre con la categoría bloqueada en exclusiva: quitar
// productScoped cuenta los ítems de producto sin que un alta concurrente pueda colarse.
func (uc *CategoryUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	var out *entity.Category
	err := uc.tx.Run(ctx, func(categories repository.CategoryRepository, items repository.ItemRepository) error {
		category, err := categories.Lock(ctx, tenantID, id, repository.LockExclusive)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
			}
			category.Name = name
		}
		if in.Slug != nil {
			s := slug.Normalize(*in.Slug)
			if s == "" {
				return fmt.Errorf("%w: el slug de la categoría queda vacío al normalizar", domain.ErrInvalidInput)
			}
			category.Slug = s
		}
		if in.Description != nil {
			category.Description = trimmedOrNil(in.Description)
		}
		if in.ProductScoped != nil {
			if category.ProductScoped && !*in.ProductScoped {
				bound, err := items.CountProductBound(ctx, tenantID, category.ID)
				if err != nil {
					return err
				}
				if bound > 0 {
					return fmt.Errorf("%w: la categoría %q tiene %d ítems asociados a productos", domain.ErrInvalidScope, category.Slug, bound)
				}
			}
			category.ProductScoped = *in.ProductScoped
		}
		category.UpdatedAt = uc.now().UTC()
		if err := categories.Update(ctx, category); err != nil {
			return err
		}
		out = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(out), nil
}

// Delete desactiva y elimina (soft delete) todos los ítems vivos y luego la categoría,
// en una única transacción: si algo falla no cambia nada. La categoría se bloquea en exclusiva
// antes de tocar los ítems para que ninguna alta quede viva bajo ella.
func (uc *CategoryUseCase) Delete(ctx context.Context, tenantID, id string) error {
	at := uc.now().UTC()
	var affected int64
	err := uc.tx.Run(ctx, func(categories repository.CategoryRepository, items repository.ItemRepository) error {
		if _, err := categories.Lock(ctx, tenantID, id, repository.LockExclusive); err != nil {
			return err
		}
		n, err := items.SoftDeleteByCategory(ctx, tenantID, id, at)
		if err != nil {
			return err
		}
		affected = n
		return categories.SoftDelete(ctx, tenantID, id, at)
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("category_id", id).
		Int64("items_deleted", affected).
		Msg("categoría eliminada con sus ítems")
	return nil
}

// List lista categorías con filtros, orden y paginación.
func (uc *CategoryUseCase) List(ctx context.Context, tenantID string, q dto.ListCategoriesQuery) (*dto.CategoryListResponse, error) {
	sortBy, ok := categorySortFields[q.OrderBy]
	if !ok {
		return nil, fmt.Errorf("%w: orderBy %q no soportado", domain.ErrInvalidInput, q.OrderBy)
	}
	var desc bool
	switch strings.ToLower(q.OrderDirection) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, fmt.Errorf("%w: orderDirection %q no soportado", domain.ErrInvalidInput, q.OrderDirection)
	}

	page, pageSize, limit, offset, err := uc.paging.normalize(q.Page, q.PageSize)
	if err != nil {
		return nil, err
	}
	filter := repository.CategoryFilter{
		Search:         strings.TrimSpace(q.Search),
		IncludeDeleted: q.IncludeDeleted,
		SortBy:         sortBy,
		SortDesc:       desc,
		Limit:          limit,
		Offset:         offset,
	}
	if strings.TrimSpace(q.Slug) != "" {
		filter.Slug = slug.Normalize(q.Slug)
	}
	if strings.TrimSpace(q.Context) != "" {
		filter.SlugPrefix = slug.Normalize(q.Context)
	}

	list, total, err := uc.categories.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	if q.IncludeItens {
		inc := repository.ItemInclusion{IncludeDeleted: q.IncludeItensDeleted, IncludeInactive: q.IncludeItensInativos}
		if err := uc.attachItems(ctx, tenantID, list, inc); err != nil {
			return nil, err
		}
	}

	data := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		data = append(data, *toCategoryResponse(c))
	}
	out := dto.NewPage(data, total, page, pageSize)
	return &out, nil
}

// Get obtiene una categoría por id; domain.ErrNotFound si no existe para el tenant.
func (uc *CategoryUseCase) Get(ctx context.Context, tenantID, id string, q dto.GetCategoryQuery) (*dto.CategoryResponse, error) {
	category, err := uc.categories.GetByID(ctx, tenantID, id, q.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	return uc.withItems(ctx, tenantID, category, q)
}

// GetBySlug obtiene una categoría viva por slug (se normaliza antes de buscar).
func (uc *CategoryUseCase) GetBySlug(ctx context.Context, tenantID, categorySlug string, q dto.GetCategoryQuery) (*dto.CategoryResponse, error) {
	category, err := uc.categories.GetBySlug(ctx, tenantID, slug.Normalize(categorySlug))
	if err != nil {
		return nil, err
	}
	return uc.withItems(ctx, tenantID, category, q)
}

func (uc *CategoryUseCase) withItems(ctx context.Context, tenantID string, category *entity.Category, q dto.GetCategoryQuery) (*dto.CategoryResponse, error) {
	if q.IncludeItens {
		inc := repository.ItemInclusion{IncludeDeleted: q.IncludeItensDeleted, IncludeInactive: q.IncludeItensInativos}
		if err := uc.attachItems(ctx, tenantID, []*entity.Category{category}, inc); err != nil {
			return nil, err
		}
	}
	return toCategoryResponse(category), nil
}

func (uc *CategoryUseCase) attachItems(ctx context.Context, tenantID string, list []*entity.Category, inc repository.ItemInclusion) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	byCategory, err := uc.items.ListByCategories(ctx, tenantID, ids, inc)
	if err != nil {
		return err
	}
	for _, c := range list {
		items := byCategory[c.ID]
		if items == nil {
			items = []*entity.CatalogItem{}
		}
		count := len(items)
		c.Items = items
		c.ItemsCount = &count
	}
	return nil
}
