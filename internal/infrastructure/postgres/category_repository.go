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

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id, tenant_id, slug, name, description, product_scoped, created_at, updated_at, deleted_at`

var categorySortColumns = map[string]string{
	"":                               "name",
	repository.CategorySortName:      "name",
	repository.CategorySortSlug:      "slug",
	repository.CategorySortCreatedAt: "created_at",
	repository.CategorySortUpdatedAt: "updated_at",
}

// CategoryRepo implementación de repository.CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func categoryConflict(slug string) error {
	return fmt.Errorf("%w: ya existe una categoría con slug %q en el tenant", domain.ErrConflict, slug)
}

func categoryNotFound(id string) error {
	return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.TenantID, &c.Slug, &c.Name, &c.Description, &c.ProductScoped,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste la categoría.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO catalog_categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.TenantID, c.Slug, c.Name, c.Description, c.ProductScoped, c.CreatedAt, c.UpdatedAt, c.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintCategorySlug) {
			return categoryConflict(c.Slug)
		}
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: id de categoría duplicado", domain.ErrConflict)
		}
		return fmt.Errorf("insert catalog category: %w", err)
	}
	return nil
}

// Update actualiza la fila viva del tenant.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	if !validID(c.ID) {
		return categoryNotFound(c.ID)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE catalog_categories
		SET slug = $3, name = $4, description = $5, product_scoped = $6, updated_at = $7
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`,
		c.ID, c.TenantID, c.Slug, c.Name, c.Description, c.ProductScoped, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintCategorySlug) {
			return categoryConflict(c.Slug)
		}
		return fmt.Errorf("update catalog category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return categoryNotFound(c.ID)
	}
	return nil
}

// GetByID obtiene la categoría del tenant.
func (r *CategoryRepo) GetByID(ctx context.Context, tenantID, id string, includeDeleted bool) (*entity.Category, error) {
	if !validID(id) {
		return nil, categoryNotFound(id)
	}
	c, err := scanCategory(r.q.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM catalog_categories
		WHERE id = $1 AND tenant_id = $2 AND ($3 OR deleted_at IS NULL)`,
		id, tenantID, includeDeleted,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, categoryNotFound(id)
		}
		return nil, fmt.Errorf("get catalog category: %w", err)
	}
	return c, nil
}

// Lock obtiene la categoría viva con SELECT ... FOR SHARE/FOR UPDATE. Con pool el bloqueo
// dura solo la sentencia; con tx hasta Commit o Rollback.
func (r *CategoryRepo) Lock(ctx context.Context, tenantID, id string, mode repository.LockMode) (*entity.Category, error) {
	if !validID(id) {
		return nil, categoryNotFound(id)
	}
	c, err := scanCategory(r.q.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM catalog_categories
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL `+lockClause(mode),
		id, tenantID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, categoryNotFound(id)
		}
		return nil, fmt.Errorf("lock catalog category: %w", err)
	}
	return c, nil
}

// GetBySlug obtiene la categoría viva con ese slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, tenantID, slug string) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM catalog_categories
		WHERE tenant_id = $1 AND slug = $2 AND deleted_at IS NULL`,
		tenantID, slug,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: categoría con slug %q", domain.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("get catalog category by slug: %w", err)
	}
	return c, nil
}

func categoryWhere(tenantID string, f repository.CategoryFilter) *where {
	w := &where{}
	w.add("tenant_id = " + w.arg(tenantID))
	if !f.IncludeDeleted {
		w.add("deleted_at IS NULL")
	}
	if f.Slug != "" {
		w.add("slug = " + w.arg(f.Slug))
	}
	if f.SlugPrefix != "" {
		w.add("slug LIKE " + w.arg(prefixPattern(f.SlugPrefix)))
	}
	if f.Search != "" {
		p := w.arg(containsPattern(f.Search))
		w.add("(name ILIKE " + p + " OR slug ILIKE " + p + " OR description ILIKE " + p + ")")
	}
	return w
}

// List filtra, ordena y pagina. El total ignora la paginación.
func (r *CategoryRepo) List(ctx context.Context, tenantID string, f repository.CategoryFilter) ([]*entity.Category, int, error) {
	column, ok := categorySortColumns[f.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: orderBy %q no soportado", domain.ErrInvalidInput, f.SortBy)
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	w := categoryWhere(tenantID, f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM catalog_categories`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count catalog categories: %w", err)
	}

	query := `SELECT ` + categoryColumns + ` FROM catalog_categories` + w.sql() +
		` ORDER BY ` + column + ` ` + direction + `, id ` + direction
	if f.Limit > 0 {
		query += ` LIMIT ` + w.arg(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + w.arg(f.Offset)
	}
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalog categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan catalog category: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// SoftDelete marca deleted_at sobre la fila viva.
func (r *CategoryRepo) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	if !validID(id) {
		return categoryNotFound(id)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE catalog_categories SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`,
		id, tenantID, at,
	)
	if err != nil {
		return fmt.Errorf("soft delete catalog category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return categoryNotFound(id)
	}
	return nil
}
