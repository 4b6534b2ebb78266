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

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación en memoria de repository.ItemRepository.
type ItemRepo struct {
	v view
}

func itemNotFound(id string) error {
	return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
}

// checkItemRow emula la FK (category_id, tenant_id) y el índice único parcial
// (tenant_id, category_id, slug) WHERE deleted_at IS NULL. Una fila viva exige además
// que la categoría siga viva.
func (st *state) checkItemRow(it *entity.CatalogItem) error {
	cat, ok := st.categories[it.CategoryID]
	if !ok || cat.TenantID != it.TenantID {
		return fmt.Errorf("%w: categoría %s del ítem", domain.ErrNotFound, it.CategoryID)
	}
	if it.DeletedAt != nil {
		return nil
	}
	if cat.DeletedAt != nil {
		return fmt.Errorf("%w: categoría %s del ítem", domain.ErrNotFound, it.CategoryID)
	}
	for id, other := range st.items {
		if id != it.ID && other.DeletedAt == nil && other.TenantID == it.TenantID &&
			other.CategoryID == it.CategoryID && other.Slug == it.Slug {
			return fmt.Errorf("%w: ya existe un ítem con slug %q en la categoría %q", domain.ErrConflict, it.Slug, cat.Slug)
		}
	}
	return nil
}

// resolved devuelve una copia con CategorySlug resuelto (equivalente al join).
func (st *state) resolved(it entity.CatalogItem) *entity.CatalogItem {
	out := cloneItem(it)
	out.CategorySlug = st.categories[it.CategoryID].Slug
	return out
}

// Create inserta el ítem.
func (r *ItemRepo) Create(ctx context.Context, item *entity.CatalogItem) error {
	return r.v.write(ctx, func(st *state) error {
		if _, exists := st.items[item.ID]; exists {
			return fmt.Errorf("%w: id de ítem duplicado", domain.ErrConflict)
		}
		if err := st.checkItemRow(item); err != nil {
			return err
		}
		row := cloneItem(*item)
		row.CategorySlug = ""
		st.items[item.ID] = *row
		return nil
	})
}

// Update reemplaza la fila viva del tenant. La categoría no cambia.
func (r *ItemRepo) Update(ctx context.Context, item *entity.CatalogItem) error {
	return r.v.write(ctx, func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok || cur.TenantID != item.TenantID || cur.DeletedAt != nil {
			return itemNotFound(item.ID)
		}
		row := cloneItem(*item)
		row.CategoryID = cur.CategoryID
		row.CategorySlug = ""
		row.CreatedAt = cur.CreatedAt
		row.DeletedAt = nil
		if err := st.checkItemRow(row); err != nil {
			return err
		}
		st.items[item.ID] = *row
		return nil
	})
}

// GetByID obtiene el ítem del tenant.
func (r *ItemRepo) GetByID(ctx context.Context, tenantID, id string, includeDeleted bool) (*entity.CatalogItem, error) {
	var out *entity.CatalogItem
	err := r.v.read(ctx, func(st *state) error {
		it, ok := st.items[id]
		if !ok || it.TenantID != tenantID || (it.DeletedAt != nil && !includeDeleted) {
			return itemNotFound(id)
		}
		out = st.resolved(it)
		return nil
	})
	return out, err
}

// GetBySlug obtiene el ítem vivo con ese slug en la categoría.
func (r *ItemRepo) GetBySlug(ctx context.Context, tenantID, categoryID, slug string) (*entity.CatalogItem, error) {
	var out *entity.CatalogItem
	err := r.v.read(ctx, func(st *state) error {
		for _, it := range st.items {
			if it.TenantID == tenantID && it.CategoryID == categoryID && it.DeletedAt == nil && it.Slug == slug {
				out = st.resolved(it)
				return nil
			}
		}
		return fmt.Errorf("%w: ítem con slug %q", domain.ErrNotFound, slug)
	})
	return out, err
}

// visible: los eliminados dependen de IncludeDeleted; los vivos inactivos de IncludeInactive.
func visible(it entity.CatalogItem, inc repository.ItemInclusion) bool {
	if it.DeletedAt != nil {
		return inc.IncludeDeleted
	}
	return it.Active || inc.IncludeInactive
}

func itemMatches(it entity.CatalogItem, search string) bool {
	if strings.Contains(strings.ToLower(it.Label), search) || strings.Contains(it.Slug, search) {
		return true
	}
	return it.Description != nil && strings.Contains(strings.ToLower(*it.Description), search)
}

func sortItems(list []*entity.CatalogItem) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.ID < b.ID
	})
}

// List filtra y pagina los ítems de la categoría: order asc, label asc.
func (r *ItemRepo) List(ctx context.Context, tenantID, categoryID string, f repository.ItemFilter) ([]*entity.CatalogItem, int, error) {
	var matched []*entity.CatalogItem
	err := r.v.read(ctx, func(st *state) error {
		search := strings.ToLower(f.Search)
		for _, it := range st.items {
			if it.TenantID != tenantID || it.CategoryID != categoryID || !visible(it, f.ItemInclusion) {
				continue
			}
			if f.ProductID != nil && it.ProductID != nil && *it.ProductID != *f.ProductID {
				continue
			}
			if search != "" && !itemMatches(it, search) {
				continue
			}
			matched = append(matched, st.resolved(it))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortItems(matched)
	total := len(matched)
	return paginate(matched, f.Limit, f.Offset), total, nil
}

// ListByCategories agrupa por categoría los ítems visibles.
func (r *ItemRepo) ListByCategories(ctx context.Context, tenantID string, categoryIDs []string, inc repository.ItemInclusion) (map[string][]*entity.CatalogItem, error) {
	wanted := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	out := make(map[string][]*entity.CatalogItem, len(categoryIDs))
	err := r.v.read(ctx, func(st *state) error {
		for _, it := range st.items {
			if it.TenantID != tenantID || !wanted[it.CategoryID] || !visible(it, inc) {
				continue
			}
			out[it.CategoryID] = append(out[it.CategoryID], st.resolved(it))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, list := range out {
		sortItems(list)
	}
	return out, nil
}

// MaxOrder mayor Order entre ítems vivos del scope.
func (r *ItemRepo) MaxOrder(ctx context.Context, tenantID, categoryID string, productID *string) (int, bool, error) {
	var (
		maxOrder int
		found    bool
	)
	err := r.v.read(ctx, func(st *state) error {
		for _, it := range st.items {
			if it.TenantID != tenantID || it.CategoryID != categoryID || it.DeletedAt != nil || !sameProduct(it.ProductID, productID) {
				continue
			}
			if !found || it.Order > maxOrder {
				maxOrder, found = it.Order, true
			}
		}
		return nil
	})
	return maxOrder, found, err
}

// CountProductBound cuenta ítems vivos asociados a algún producto.
func (r *ItemRepo) CountProductBound(ctx context.Context, tenantID, categoryID string) (int, error) {
	var n int
	err := r.v.read(ctx, func(st *state) error {
		for _, it := range st.items {
			if it.TenantID == tenantID && it.CategoryID == categoryID && it.DeletedAt == nil && it.ProductID != nil {
				n++
			}
		}
		return nil
	})
	return n, err
}

// SoftDelete desactiva y marca deleted_at sobre la fila viva.
func (r *ItemRepo) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	return r.v.write(ctx, func(st *state) error {
		it, ok := st.items[id]
		if !ok || it.TenantID != tenantID || it.DeletedAt != nil {
			return itemNotFound(id)
		}
		st.items[id] = *tombstone(it, at)
		return nil
	})
}

// SoftDeleteByCategory desactiva y elimina todos los ítems vivos de la categoría.
func (r *ItemRepo) SoftDeleteByCategory(ctx context.Context, tenantID, categoryID string, at time.Time) (int64, error) {
	var n int64
	err := r.v.write(ctx, func(st *state) error {
		for id, it := range st.items {
			if it.TenantID != tenantID || it.CategoryID != categoryID || it.DeletedAt != nil {
				continue
			}
			st.items[id] = *tombstone(it, at)
			n++
		}
		return nil
	})
	return n, err
}

func tombstone(it entity.CatalogItem, at time.Time) *entity.CatalogItem {
	out := cloneItem(it)
	out.Active = false
	out.DeletedAt = &at
	out.UpdatedAt = at
	return out
}
