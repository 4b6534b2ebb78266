package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
	"github.com/jhoicas/taxonomia-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// itemSelect resuelve category_slug con el join; la FK garantiza que la categoría es del mismo tenant.
const itemSelect = `
	SELECT i.id, i.tenant_id, i.category_id, c.slug, i.slug, i.label, i.description, i.sort_order,
	       i.active, i.metadata, i.product_id, i.created_at, i.updated_at, i.deleted_at
	FROM catalog_items i
	JOIN catalog_categories c ON c.id = i.category_id AND c.tenant_id = i.tenant_id`

const itemOrder = ` ORDER BY i.sort_order ASC, i.label ASC, i.id ASC`

// ItemRepo implementación de repository.ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func itemNotFound(id string) error {
	return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
}

func itemConflict(it *entity.CatalogItem) error {
	scope := it.CategorySlug
	if scope == "" {
		scope = it.CategoryID
	}
	return fmt.Errorf("%w: ya existe un ítem con slug %q en la categoría %q", domain.ErrConflict, it.Slug, scope)
}

func scanItem(row pgx.Row) (*entity.CatalogItem, error) {
	var it entity.CatalogItem
	if err := row.Scan(&it.ID, &it.TenantID, &it.CategoryID, &it.CategorySlug, &it.Slug, &it.Label,
		&it.Description, &it.Order, &it.Active, &it.Metadata, &it.ProductID,
		&it.CreatedAt, &it.UpdatedAt, &it.DeletedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func collectItems(rows pgx.Rows) ([]*entity.CatalogItem, error) {
	defer rows.Close()
	var list []*entity.CatalogItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// metadataParam la columna es NOT NULL: nil se guarda como objeto vacío.
func metadataParam(m entity.Metadata) entity.Metadata {
	if m == nil {
		return entity.Metadata{}
	}
	return m
}

// itemInsert copia tenant y categoría de la fila de catalog_categories: si la categoría no
// existe, es de otro tenant o está eliminada no se inserta nada (salvo que el ítem ya nazca
// eliminado).
const itemInsert = `
	INSERT INTO catalog_items (id, tenant_id, category_id, slug, label, description, sort_order,
		active, metadata, product_id, created_at, updated_at, deleted_at)
	SELECT $1::uuid, c.tenant_id, c.id, $4::text, $5::text, $6::text, $7::integer,
		$8::boolean, $9::jsonb, $10::text, $11::timestamptz, $12::timestamptz, $13::timestamptz
	FROM catalog_categories c
	WHERE c.id = $3 AND c.tenant_id = $2 AND (c.deleted_at IS NULL OR $13::timestamptz IS NOT NULL)`

// Create persiste el ítem. Una categoría inexistente, de otro tenant o eliminada da ErrNotFound.
func (r *ItemRepo) Create(ctx context.Context, it *entity.CatalogItem) error {
	if !validID(it.CategoryID) {
		return fmt.Errorf("%w: categoría %s del ítem", domain.ErrNotFound, it.CategoryID)
	}
	cmd, err := r.q.Exec(ctx, itemInsert,
		it.ID, it.TenantID, it.CategoryID, it.Slug, it.Label, it.Description, it.Order,
		it.Active, metadataParam(it.Metadata), it.ProductID, it.CreatedAt, it.UpdatedAt, it.DeletedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, constraintItemSlug):
			return itemConflict(it)
		case isUniqueViolation(err, ""):
			return fmt.Errorf("%w: id de ítem duplicado", domain.ErrConflict)
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: categoría %s del ítem", domain.ErrNotFound, it.CategoryID)
		}
		return fmt.Errorf("insert catalog item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: categoría %s del ítem", domain.ErrNotFound, it.CategoryID)
	}
	return nil
}

// Update actualiza la fila viva del tenant. La categoría no cambia.
func (r *ItemRepo) Update(ctx context.Context, it *entity.CatalogItem) error {
	if !validID(it.ID) {
		return itemNotFound(it.ID)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE catalog_items
		SET slug = $3, label = $4, description = $5, sort_order = $6, active = $7,
		    metadata = $8, product_id = $9, updated_at = $10
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`,
		it.ID, it.TenantID, it.Slug, it.Label, it.Description, it.Order, it.Active,
		metadataParam(it.Metadata), it.ProductID, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintItemSlug) {
			return itemConflict(it)
		}
		return fmt.Errorf("update catalog item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return itemNotFound(it.ID)
	}
	return nil
}

// GetByID obtiene el ítem del tenant.
func (r *ItemRepo) GetByID(ctx context.Context, tenantID, id string, includeDeleted bool) (*entity.CatalogItem, error) {
	if !validID(id) {
		return nil, itemNotFound(id)
	}
	it, err := scanItem(r.q.QueryRow(ctx, itemSelect+`
		WHERE i.id = $1 AND i.tenant_id = $2 AND ($3 OR i.deleted_at IS NULL)`,
		id, tenantID, includeDeleted,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, itemNotFound(id)
		}
		return nil, fmt.Errorf("get catalog item: %w", err)
	}
	return it, nil
}

// GetBySlug obtiene el ítem vivo con ese slug en la categoría.
func (r *ItemRepo) GetBySlug(ctx context.Context, tenantID, categoryID, slug string) (*entity.CatalogItem, error) {
	notFound := fmt.Errorf("%w: ítem con slug %q", domain.ErrNotFound, slug)
	if !validID(categoryID) {
		return nil, notFound
	}
	it, err := scanItem(r.q.QueryRow(ctx, itemSelect+`
		WHERE i.tenant_id = $1 AND i.category_id = $2 AND i.slug = $3 AND i.deleted_at IS NULL`,
		tenantID, categoryID, slug,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("get catalog item by slug: %w", err)
	}
	return it, nil
}

// addVisibility: eliminados según IncludeDeleted, vivos inactivos según IncludeInactive.
func addVisibility(w *where, inc repository.ItemInclusion) {
	if !inc.IncludeDeleted {
		w.add("i.deleted_at IS NULL")
	}
	if !inc.IncludeInactive {
		w.add("(i.active OR i.deleted_at IS NOT NULL)")
	}
}

// List filtra y pagina los ítems de la categoría: order asc, label asc.
func (r *ItemRepo) List(ctx context.Context, tenantID, categoryID string, f repository.ItemFilter) ([]*entity.CatalogItem, int, error) {
	if !validID(categoryID) {
		return []*entity.CatalogItem{}, 0, nil
	}
	w := &where{}
	w.add("i.tenant_id = " + w.arg(tenantID))
	w.add("i.category_id = " + w.arg(categoryID))
	addVisibility(w, f.ItemInclusion)
	if f.ProductID != nil {
		w.add("(i.product_id IS NULL OR i.product_id = " + w.arg(*f.ProductID) + ")")
	}
	if f.Search != "" {
		p := w.arg(containsPattern(f.Search))
		w.add("(i.label ILIKE " + p + " OR i.slug ILIKE " + p + " OR i.description ILIKE " + p + ")")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM catalog_items i`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count catalog items: %w", err)
	}
	query := itemSelect + w.sql() + itemOrder
	if f.Limit > 0 {
		query += ` LIMIT ` + w.arg(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + w.arg(f.Offset)
	}
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalog items: %w", err)
	}
	list, err := collectItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByCategories agrupa por categoría los ítems visibles con una sola consulta.
func (r *ItemRepo) ListByCategories(ctx context.Context, tenantID string, categoryIDs []string, inc repository.ItemInclusion) (map[string][]*entity.CatalogItem, error) {
	out := make(map[string][]*entity.CatalogItem, len(categoryIDs))
	ids := validIDs(categoryIDs)
	if len(ids) == 0 {
		return out, nil
	}
	w := &where{}
	w.add("i.tenant_id = " + w.arg(tenantID))
	w.add("i.category_id = ANY(" + w.arg(ids) + "::uuid[])")
	addVisibility(w, inc)
	rows, err := r.q.Query(ctx, itemSelect+w.sql()+itemOrder, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list catalog items by categories: %w", err)
	}
	list, err := collectItems(rows)
	if err != nil {
		return nil, err
	}
	for _, it := range list {
		out[it.CategoryID] = append(out[it.CategoryID], it)
	}
	return out, nil
}

// MaxOrder mayor sort_order entre ítems vivos del scope (tenant, categoría, producto).
func (r *ItemRepo) MaxOrder(ctx context.Context, tenantID, categoryID string, productID *string) (int, bool, error) {
	if !validID(categoryID) {
		return 0, false, nil
	}
	var maxOrder *int
	err := r.q.QueryRow(ctx, `
		SELECT max(sort_order) FROM catalog_items
		WHERE tenant_id = $1 AND category_id = $2 AND deleted_at IS NULL
		  AND product_id IS NOT DISTINCT FROM $3`,
		tenantID, categoryID, productID,
	).Scan(&maxOrder)
	if err != nil {
		return 0, false, fmt.Errorf("max catalog item order: %w", err)
	}
	if maxOrder == nil {
		return 0, false, nil
	}
	return *maxOrder, true, nil
}

// CountProductBound cuenta ítems vivos asociados a algún producto.
func (r *ItemRepo) CountProductBound(ctx context.Context, tenantID, categoryID string) (int, error) {
	if !validID(categoryID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM catalog_items
		WHERE tenant_id = $1 AND category_id = $2 AND deleted_at IS NULL AND product_id IS NOT NULL`,
		tenantID, categoryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count product-bound catalog items: %w", err)
	}
	return n, nil
}

// SoftDelete desactiva y marca deleted_at sobre la fila viva.
func (r *ItemRepo) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	if !validID(id) {
		return itemNotFound(id)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE catalog_items SET active = FALSE, deleted_at = $3, updated_at = $3
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`,
		id, tenantID, at,
	)
	if err != nil {
		return fmt.Errorf("soft delete catalog item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return itemNotFound(id)
	}
	return nil
}

// SoftDeleteByCategory desactiva y elimina todos los ítems vivos de la categoría.
func (r *ItemRepo) SoftDeleteByCategory(ctx context.Context, tenantID, categoryID string, at time.Time) (int64, error) {
	if !validID(categoryID) {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE catalog_items SET active = FALSE, deleted_at = $3, updated_at = $3
		WHERE tenant_id = $1 AND category_id = $2 AND deleted_at IS NULL`,
		tenantID, categoryID, at,
	)
	if err != nil {
		return 0, fmt.Errorf("soft delete catalog items by category: %w", err)
	}
	return cmd.RowsAffected(), nil
}
