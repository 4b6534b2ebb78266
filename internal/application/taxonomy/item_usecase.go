package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taxonomia-api/internal/application/dto"
	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/internal/domain/catalog"
	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
	"github.com/jhoicas/taxonomia-api/internal/domain/repository"
	"github.com/jhoicas/taxonomia-api/pkg/logger"
	"github.com/jhoicas/taxonomia-api/pkg/slug"
)

// ItemUseCase ciclo de vida de ítems y resolución de CatalogValue para los adaptadores.
type ItemUseCase struct {
	categories repository.CategoryRepository
	items      repository.ItemRepository
	tx         repository.TxRunner
	log        *logger.Logger
	paging     Paging
	now        func() time.Time
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	categories repository.CategoryRepository,
	items repository.ItemRepository,
	tx repository.TxRunner,
	log *logger.Logger,
	paging Paging,
) *ItemUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ItemUseCase{
		categories: categories,
		items:      items,
		tx:         tx,
		log:        log.Component("item_usecase"),
		paging:     paging,
		now:        time.Now,
	}
}

// Create crea un ítem en la categoría. Sin Order se usa max(order)+1 del scope
// (tenant, categoría, producto); dos altas concurrentes pueden repetir el valor y se acepta.
// La categoría se bloquea en modo compartido hasta confirmar el alta, de modo que un borrado
// o un cambio de productScoped concurrente espera o hace fallar el alta.
func (uc *ItemUseCase) Create(ctx context.Context, tenantID, categoryID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	productID := trimmedOrNil(in.ProductID)
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return nil, fmt.Errorf("%w: label es requerido", domain.ErrInvalidInput)
	}
	s := slug.FromOptional(in.Slug, label)
	if s == "" {
		return nil, fmt.Errorf("%w: el slug del ítem queda vacío al normalizar", domain.ErrInvalidInput)
	}
	if _, err := catalog.ParseMetadata(in.Metadata); err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := uc.now().UTC()
	item := &entity.CatalogItem{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Slug:        s,
		Label:       label,
		Description: trimmedOrNil(in.Description),
		Active:      active,
		Metadata:    entity.Metadata(in.Metadata).Clone(),
		ProductID:   productID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.tx.Run(ctx, func(categories repository.CategoryRepository, items repository.ItemRepository) error {
		category, err := categories.Lock(ctx, tenantID, categoryID, repository.LockShare)
		if err != nil {
			return err
		}
		if err := checkProductScope(category, productID); err != nil {
			return err
		}
		item.CategoryID = category.ID
		item.CategorySlug = category.Slug
		if in.Order != nil {
			item.Order = *in.Order
		} else {
			maxOrder, found, err := items.MaxOrder(ctx, tenantID, category.ID, productID)
			if err != nil {
				return err
			}
			if found {
				item.Order = maxOrder + 1
			}
		}
		return items.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("category_id", item.CategoryID).
		Str("item_id", item.ID).
		Str("slug", item.Slug).
		Int("order", item.Order).
		Msg("ítem creado")
	return toItemResponse(item), nil
}

// Update aplica solo los campos enviados. Metadata no nula reemplaza por completo la anterior.
// Igual que Create, corre con la categoría bloqueada en modo compartido.
func (uc *ItemUseCase) Update(ctx context.Context, tenantID, itemID string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	var out *entity.CatalogItem
	err := uc.tx.Run(ctx, func(categories repository.CategoryRepository, items repository.ItemRepository) error {
		item, err := items.GetByID(ctx, tenantID, itemID, false)
		if err != nil {
			return err
		}
		category, err := categories.Lock(ctx, tenantID, item.CategoryID, repository.LockShare)
		if err != nil {
			return err
		}
		if err := applyItemUpdate(item, category, in); err != nil {
			return err
		}
		item.UpdatedAt = uc.now().UTC()
		if err := items.Update(ctx, item); err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(out), nil
}

func applyItemUpdate(item *entity.CatalogItem, category *entity.Category, in dto.UpdateItemRequest) error {
	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return fmt.Errorf("%w: label no puede quedar vacío", domain.ErrInvalidInput)
		}
		item.Label = label
	}
	if in.Slug != nil {
		s := slug.Normalize(*in.Slug)
		if s == "" {
			return fmt.Errorf("%w: el slug del ítem queda vacío al normalizar", domain.ErrInvalidInput)
		}
		item.Slug = s
	}
	if in.Description != nil {
		item.Description = trimmedOrNil(in.Description)
	}
	if in.Order != nil {
		item.Order = *in.Order
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	switch {
	case in.ClearProductID:
		item.ProductID = nil
	case in.ProductID != nil:
		productID := trimmedOrNil(in.ProductID)
		if err := checkProductScope(category, productID); err != nil {
			return err
		}
		item.ProductID = productID
	}
	if in.Metadata != nil {
		if _, err := catalog.ParseMetadata(in.Metadata); err != nil {
			return err
		}
		item.Metadata = entity.Metadata(in.Metadata).Clone()
	}
	return nil
}

// Delete desactiva y elimina (soft delete) el ítem. Repetirlo sobre un ítem ya eliminado no
// falla; domain.ErrNotFound solo si nunca existió para el tenant.
func (uc *ItemUseCase) Delete(ctx context.Context, tenantID, itemID string) error {
	item, err := uc.items.GetByID(ctx, tenantID, itemID, true)
	if err != nil {
		return err
	}
	if item.IsDeleted() {
		return nil
	}
	if err := uc.items.SoftDelete(ctx, tenantID, itemID, uc.now().UTC()); err != nil {
		return err
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("item_id", itemID).
		Msg("ítem eliminado")
	return nil
}

// List lista los ítems de una categoría: order asc, luego label asc.
func (uc *ItemUseCase) List(ctx context.Context, tenantID, categoryID string, q dto.ListItemsQuery) (*dto.ItemListResponse, error) {
	category, err := uc.categories.GetByID(ctx, tenantID, categoryID, false)
	if err != nil {
		return nil, err
	}
	productID := trimmedOrNil(&q.ProdutoID)
	if err := checkProductScope(category, productID); err != nil {
		return nil, err
	}

	page, pageSize, limit, offset, err := uc.paging.normalize(q.Page, q.PageSize)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.items.List(ctx, tenantID, category.ID, repository.ItemFilter{
		ItemInclusion: repository.ItemInclusion{
			IncludeDeleted:  q.IncludeDeleted,
			IncludeInactive: q.IncludeInativos,
		},
		ProductID: productID,
		Search:    strings.TrimSpace(q.Search),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		data = append(data, *toItemResponse(it))
	}
	out := dto.NewPage(data, total, page, pageSize)
	return &out, nil
}

// Get obtiene un ítem vivo por id.
func (uc *ItemUseCase) Get(ctx context.Context, tenantID, itemID string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, tenantID, itemID, false)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Resolve obtiene el CatalogValue de (categorySlug, itemSlug). Ítems inactivos también resuelven.
func (uc *ItemUseCase) Resolve(ctx context.Context, tenantID, categorySlug, itemSlug string) (catalog.CatalogValue, error) {
	category, err := uc.categories.GetBySlug(ctx, tenantID, slug.Normalize(categorySlug))
	if err != nil {
		return catalog.CatalogValue{}, err
	}
	item, err := uc.items.GetBySlug(ctx, tenantID, category.ID, slug.Normalize(itemSlug))
	if err != nil {
		return catalog.CatalogValue{}, err
	}
	return catalog.FromItem(item, category.Slug)
}

// ResolveByID obtiene el CatalogValue de una referencia persistida. Incluye ítems eliminados
// para que las referencias históricas sigan resolviendo; falla con domain.ErrCategoryMismatch
// si el ítem es de otra categoría.
func (uc *ItemUseCase) ResolveByID(ctx context.Context, tenantID, expectedCategorySlug, itemID string) (catalog.CatalogValue, error) {
	item, err := uc.items.GetByID(ctx, tenantID, itemID, true)
	if err != nil {
		return catalog.CatalogValue{}, err
	}
	return catalog.FromItem(item, expectedCategorySlug)
}

func checkProductScope(category *entity.Category, productID *string) error {
	if productID != nil && !category.ProductScoped {
		return fmt.Errorf("%w: la categoría %q no admite ítems por producto", domain.ErrInvalidScope, category.Slug)
	}
	return nil
}
