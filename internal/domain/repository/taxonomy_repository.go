package repository

import (
	"context"
	"time"

	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
)

// Campos de ordenamiento admitidos para categorías.
const (
	CategorySortName      = "name"
	CategorySortSlug      = "slug"
	CategorySortCreatedAt = "createdAt"
	CategorySortUpdatedAt = "updatedAt"
)

// CategoryFilter filtros de listado de categorías. Limit <= 0 significa sin límite.
type CategoryFilter struct {
	Search         string // subcadena sin distinguir mayúsculas en name/slug/description
	Slug           string // coincidencia exacta
	SlugPrefix     string // "context"
	IncludeDeleted bool
	SortBy         string
	SortDesc       bool
	Limit          int
	Offset         int
}

// ItemInclusion controla qué ítems se adjuntan a una categoría.
type ItemInclusion struct {
	IncludeDeleted  bool
	IncludeInactive bool
}

// ItemFilter filtros de listado de ítems. Orden fijo: order asc, label asc.
type ItemFilter struct {
	ItemInclusion
	// ProductID restringe a ítems del producto más los ítems globales (product_id nulo).
	ProductID *string
	Search    string
	Limit     int
	Offset    int
}

// LockMode tipo de bloqueo de fila que toma CategoryRepository.Lock.
type LockMode int

const (
	// LockShare bloqueo compartido: escrituras de ítems bajo la categoría.
	LockShare LockMode = iota
	// LockExclusive bloqueo exclusivo: cambios y borrado de la propia categoría.
	LockExclusive
)

// CategoryRepository puerto de persistencia para Category.
// Create/Update devuelven domain.ErrConflict cuando la restricción única de slug se viola
// y domain.ErrNotFound cuando el id no resuelve a una fila viva del tenant.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, tenantID, id string, includeDeleted bool) (*entity.Category, error)
	GetBySlug(ctx context.Context, tenantID, slug string) (*entity.Category, error)
	// Lock obtiene la categoría viva y bloquea su fila hasta el fin de la transacción en curso.
	// Fuera de TxRunner.Run equivale a GetByID sin eliminados.
	Lock(ctx context.Context, tenantID, id string, mode LockMode) (*entity.Category, error)
	List(ctx context.Context, tenantID string, filter CategoryFilter) ([]*entity.Category, int, error)
	SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error
}

// ItemRepository puerto de persistencia para CatalogItem.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.CatalogItem) error
	Update(ctx context.Context, item *entity.CatalogItem) error
	GetByID(ctx context.Context, tenantID, id string, includeDeleted bool) (*entity.CatalogItem, error)
	GetBySlug(ctx context.Context, tenantID, categoryID, slug string) (*entity.CatalogItem, error)
	List(ctx context.Context, tenantID, categoryID string, filter ItemFilter) ([]*entity.CatalogItem, int, error)
	ListByCategories(ctx context.Context, tenantID string, categoryIDs []string, inc ItemInclusion) (map[string][]*entity.CatalogItem, error)
	// MaxOrder devuelve el mayor Order vivo en (tenant, categoría, producto); found=false si no hay ítems.
	MaxOrder(ctx context.Context, tenantID, categoryID string, productID *string) (max int, found bool, err error)
	// CountProductBound cuenta ítems vivos con product_id no nulo.
	CountProductBound(ctx context.Context, tenantID, categoryID string) (int, error)
	SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error
	SoftDeleteByCategory(ctx context.Context, tenantID, categoryID string, at time.Time) (int64, error)
}

// TxRunner ejecuta fn con repositorios atados a una única transacción: Commit si fn devuelve nil,
// Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(categories CategoryRepository, items ItemRepository) error) error
}
