package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
	"github.com/jhoicas/taxonomia-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria de repository.CategoryRepository.
type CategoryRepo struct {
	v view
}

func categoryConflict(slug string) error {
	return fmt.Errorf("%w: ya existe una categoría con slug %q en el tenant", domain.ErrConflict, slug)
}

func categoryNotFound(id string) error {
	return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
}

// slugTaken emula el índice único parcial (tenant_id, slug) WHERE deleted_at IS NULL.
func (st *state) categorySlugTaken(c *entity.Category) bool {
	for id, other := range st.categories {
		if id != c.ID && other.TenantID == c.TenantID && other.DeletedAt == nil && other.Slug == c.Slug {
			return true
		}
	}
	return false
}

// Create inserta la categoría.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	return r.v.write(ctx, func(st *state) error {
		if _, exists := st.categories[category.ID]; exists {
			return fmt.Errorf("%w: id de categoría duplicado", domain.ErrConflict)
		}
		if st.categorySlugTaken(category) {
			return categoryConflict(category.Slug)
		}
		st.categories[category.ID] = *cloneCategory(*category)
		return nil
	})
}

// Update reemplaza la fila viva del tenant.
func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	return r.v.write(ctx, func(st *state) error {
		cur, ok := st.categories[category.ID]
		if !ok || cur.TenantID != category.TenantID || cur.DeletedAt != nil {
			return categoryNotFound(category.ID)
		}
		if st.categorySlugTaken(category) {
			return categoryConflict(category.Slug)
		}
		next := cloneCategory(*category)
		next.CreatedAt = cur.CreatedAt
		next.DeletedAt = nil
		st.categories[category.ID] = *next
		return nil
	})
}

// GetByID obtiene la categoría del tenant.
func (r *CategoryRepo) GetByID(ctx context.Context, tenantID, id string, includeDeleted bool) (*entity.Category, error) {
	var out *entity.Category
	err := r.v.read(ctx, func(st *state) error {
		c, ok := st.categories[id]
		if !ok || c.TenantID != tenantID || (c.DeletedAt != nil && !includeDeleted) {
			return categoryNotFound(id)
		}
		out = cloneCategory(c)
		return nil
	})
	return out, err
}

// GetBySlug obtiene la categoría viva con ese slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, tenantID, slug string) (*entity.Category, error) {
	var out *entity.Category
	err := r.v.read(ctx, func(st *state) error {
		for _, c := range st.categories {
			if c.TenantID == tenantID && c.DeletedAt == nil && c.Slug == slug {
				out = cloneCategory(c)
				return nil
			}
		}
		return fmt.Errorf("%w: categoría con slug %q", domain.ErrNotFound, slug)
	})
	return out, err
}

// Lock dentro de Run el store ya está bloqueado en escritura para toda la transacción,
// así que basta con leer la fila viva.
func (r *CategoryRepo) Lock(ctx context.Context, tenantID, id string, _ repository.LockMode) (*entity.Category, error) {
	return r.GetByID(ctx, tenantID, id, false)
}

// List filtra, ordena y pagina.
func (r *CategoryRepo) List(ctx context.Context, tenantID string, f repository.CategoryFilter) ([]*entity.Category, int, error) {
	var matched []*entity.Category
	err := r.v.read(ctx, func(st *state) error {
		search := strings.ToLower(f.Search)
		for _, c := range st.categories {
			if c.TenantID != tenantID || (c.DeletedAt != nil && !f.IncludeDeleted) {
				continue
			}
			if f.Slug != "" && c.Slug != f.Slug {
				continue
			}
			if f.SlugPrefix != "" && !strings.HasPrefix(c.Slug, f.SlugPrefix) {
				continue
			}
			if search != "" && !categoryMatches(c, search) {
				continue
			}
			matched = append(matched, cloneCategory(c))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less, equal bool
		switch f.SortBy {
		case repository.CategorySortSlug:
			less, equal = a.Slug < b.Slug, a.Slug == b.Slug
		case repository.CategorySortCreatedAt:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		case repository.CategorySortUpdatedAt:
			less, equal = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		default:
			less, equal = a.Name < b.Name, a.Name == b.Name
		}
		if equal {
			return a.ID < b.ID
		}
		if f.SortDesc {
			return !less
		}
		return less
	})

	total := len(matched)
	return paginate(matched, f.Limit, f.Offset), total, nil
}

func categoryMatches(c entity.Category, search string) bool {
	if strings.Contains(strings.ToLower(c.Name), search) || strings.Contains(c.Slug, search) {
		return true
	}
	return c.Description != nil && strings.Contains(strings.ToLower(*c.Description), search)
}

// SoftDelete marca deleted_at sobre la fila viva.
func (r *CategoryRepo) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	return r.v.write(ctx, func(st *state) error {
		c, ok := st.categories[id]
		if !ok || c.TenantID != tenantID || c.DeletedAt != nil {
			return categoryNotFound(id)
		}
		next := cloneCategory(c)
		next.DeletedAt = &at
		next.UpdatedAt = at
		st.categories[id] = *next
		return nil
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 || offset > len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
