package taxonomy

import (
	"context"
	"errors"

	"github.com/jhoicas/taxonomia-api/internal/application/dto"
	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/pkg/logger"
	"github.com/jhoicas/taxonomia-api/pkg/slug"
)

// SeedResult conteo de lo creado en una ejecución del seeder.
type SeedResult struct {
	CategoriesCreated int
	ItemsCreated      int
}

// Seeder crea las taxonomías por defecto de un tenant. Es idempotente: lo que ya existe se omite,
// y lo que el tenant eliminó (categorías o ítems con deletedAt) no se vuelve a crear.
type Seeder struct {
	categories *CategoryUseCase
	items      *ItemUseCase
	log        *logger.Logger
}

// NewSeeder construye el seeder sobre los casos de uso.
func NewSeeder(categories *CategoryUseCase, items *ItemUseCase, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{categories: categories, items: items, log: log.Component("seeder")}
}

// Seed aplica defaults para tenantID.
func (s *Seeder) Seed(ctx context.Context, tenantID string, defaults []DefaultCategory) (SeedResult, error) {
	var res SeedResult
	for _, def := range defaults {
		found, err := s.categories.List(ctx, tenantID, dto.ListCategoriesQuery{
			Slug:                 def.Slug,
			IncludeDeleted:       true,
			IncludeItens:         true,
			IncludeItensDeleted:  true,
			IncludeItensInativos: true,
		})
		if err != nil {
			return res, err
		}
		category := liveCategory(found.Data)
		if category == nil && len(found.Data) > 0 {
			s.log.Debug().
				Str("tenant_id", tenantID).
				Str("slug", def.Slug).
				Msg("categoría eliminada por el tenant, se omite")
			continue
		}
		seen := map[string]bool{}
		if category == nil {
			categorySlug, desc := def.Slug, def.Description
			category, err = s.categories.Create(ctx, tenantID, dto.CreateCategoryRequest{
				Name:          def.Name,
				Slug:          &categorySlug,
				Description:   &desc,
				ProductScoped: def.ProductScoped,
			})
			if err != nil {
				return res, err
			}
			res.CategoriesCreated++
		} else if category.Items != nil {
			for _, it := range *category.Items {
				seen[it.Slug] = true
			}
		}

		for _, it := range def.Items {
			itemSlug := slug.Normalize(it.Slug)
			if seen[itemSlug] {
				continue
			}
			_, err := s.items.Create(ctx, tenantID, category.ID, dto.CreateItemRequest{
				Label:    it.Label,
				Slug:     &itemSlug,
				Metadata: it.Metadata,
			})
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			if err != nil {
				return res, err
			}
			res.ItemsCreated++
		}
	}
	s.log.Info().
		Str("tenant_id", tenantID).
		Int("categories_created", res.CategoriesCreated).
		Int("items_created", res.ItemsCreated).
		Msg("taxonomías por defecto aplicadas")
	return res, nil
}

func liveCategory(list []dto.CategoryResponse) *dto.CategoryResponse {
	for i := range list {
		if list[i].DeletedAt == nil {
			return &list[i]
		}
	}
	return nil
}
