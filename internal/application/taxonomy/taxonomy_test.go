package taxonomy

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/taxonomia-api/internal/application/dto"
	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/internal/domain/catalog"
	"github.com/jhoicas/taxonomia-api/internal/domain/repository"
	"github.com/jhoicas/taxonomia-api/internal/infrastructure/memory"
)

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
)

type fixture struct {
	store      *memory.Store
	categories *CategoryUseCase
	items      *ItemUseCase
	seeder     *Seeder
	clock      time.Time
}

// newFixture arma los casos de uso sobre el store en memoria con un reloj que avanza
// un segundo por lectura.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	tick := func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.categories = NewCategoryUseCase(f.store.Categories(), f.store.Items(), f.store, nil, DefaultPaging)
	f.categories.now = tick
	f.items = NewItemUseCase(f.store.Categories(), f.store.Items(), f.store, nil, DefaultPaging)
	f.items.now = tick
	f.seeder = NewSeeder(f.categories, f.items, nil)
	return f
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func (f *fixture) category(t *testing.T, tenant, name string, productScoped bool) *dto.CategoryResponse {
	t.Helper()
	c, err := f.categories.Create(context.Background(), tenant, dto.CreateCategoryRequest{Name: name, ProductScoped: productScoped})
	require.NoError(t, err)
	return c
}

func (f *fixture) item(t *testing.T, tenant, categoryID string, in dto.CreateItemRequest) *dto.ItemResponse {
	t.Helper()
	it, err := f.items.Create(context.Background(), tenant, categoryID, in)
	require.NoError(t, err)
	return it
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_SquadStatusDesdeCatalogo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cat, err := f.categories.Create(ctx, tenantA, dto.CreateCategoryRequest{
		Name: "Status de squad", Slug: strPtr("planejamento squad status"),
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.CategorySquadStatus, cat.Slug)

	created := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{
		Label:    "Ativo",
		Metadata: map[string]any{catalog.KeyLegacyValue: "ativo"},
	})
	assert.Equal(t, "ativo", created.Slug)
	assert.Equal(t, 0, created.Order)
	assert.True(t, created.Active)
	assert.Equal(t, catalog.CategorySquadStatus, created.CategorySlug)

	v, err := f.items.Resolve(ctx, tenantA, "planejamento_squad_status", "Ativo")
	require.NoError(t, err)
	squad, err := catalog.SquadStatusFromValue(v)
	require.NoError(t, err)
	assert.True(t, squad.IsActive())
	assert.Equal(t, "ativo", squad.Value())
	assert.Equal(t, "Ativo", squad.Label())

	_, err = catalog.CommitmentTierFromValue(v)
	require.ErrorIs(t, err, domain.ErrCategoryMismatch)
	assert.Contains(t, err.Error(), catalog.CategorySquadStatus)
	assert.Contains(t, err.Error(), catalog.CategoryCommitmentTier)

	byID, err := f.items.ResolveByID(ctx, tenantA, catalog.CategorySquadStatus, created.ID)
	require.NoError(t, err)
	assert.True(t, byID.Equal(v))

	_, err = f.items.ResolveByID(ctx, tenantA, catalog.CategoryCommitmentTier, created.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryMismatch)
}

func TestResolveByID_EliminadoSigueResolviendo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "planejamento_ciclo_status", false)
	it := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Closed"})
	require.NoError(t, f.items.Delete(ctx, tenantA, it.ID))

	v, err := f.items.ResolveByID(ctx, tenantA, catalog.CategoryPlanningCycleStatus, it.ID)
	require.NoError(t, err)
	cycle, err := catalog.PlanningCycleStatusFromValue(v)
	require.NoError(t, err)
	assert.True(t, cycle.IsTerminal())

	_, err = f.items.Resolve(ctx, tenantA, catalog.CategoryPlanningCycleStatus, "closed")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.categories.Create(ctx, tenantA, dto.CreateCategoryRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.categories.Create(ctx, tenantA, dto.CreateCategoryRequest{Name: "Ok", Slug: strPtr("---")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	first := f.category(t, tenantA, "Ação", false)
	assert.Equal(t, "acao", first.Slug)

	_, err = f.categories.Create(ctx, tenantA, dto.CreateCategoryRequest{Name: "acao"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// el slug es por tenant
	other := f.category(t, tenantB, "acao", false)
	assert.Equal(t, "acao", other.Slug)
}

func TestCategoryUpdate_Parcial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat, err := f.categories.Create(ctx, tenantA, dto.CreateCategoryRequest{Name: "Tier", Description: strPtr("desc")})
	require.NoError(t, err)
	f.category(t, tenantA, "Outra", false)

	got, err := f.categories.Update(ctx, tenantA, cat.ID, dto.UpdateCategoryRequest{Name: strPtr("Tier nuevo")})
	require.NoError(t, err)
	assert.Equal(t, "Tier nuevo", got.Name)
	assert.Equal(t, "tier", got.Slug, "el slug no cambia si no se envía")
	require.NotNil(t, got.Description)
	assert.Equal(t, "desc", *got.Description)
	assert.True(t, got.UpdatedAt.After(cat.UpdatedAt))

	_, err = f.categories.Update(ctx, tenantA, cat.ID, dto.UpdateCategoryRequest{Slug: strPtr("OUTRA")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.categories.Update(ctx, tenantB, cat.ID, dto.UpdateCategoryRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryUpdate_QuitarProductScopedConItemsDeProducto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Tier", true)
	it := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Committed", ProductID: strPtr("p1")})

	_, err := f.categories.Update(ctx, tenantA, cat.ID, dto.UpdateCategoryRequest{ProductScoped: boolPtr(false)})
	require.ErrorIs(t, err, domain.ErrInvalidScope)

	_, err = f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{ClearProductID: true})
	require.NoError(t, err)
	got, err := f.categories.Update(ctx, tenantA, cat.ID, dto.UpdateCategoryRequest{ProductScoped: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, got.ProductScoped)
}

func TestCategoryDelete_CascadaAtomica(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)
	keep := f.category(t, tenantA, "Otra", false)
	for _, label := range []string{"A", "B", "C"} {
		f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: label})
	}
	inactive := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "D", Active: boolPtr(false)})
	f.item(t, tenantA, keep.ID, dto.CreateItemRequest{Label: "X"})

	require.ErrorIs(t, f.categories.Delete(ctx, tenantB, cat.ID), domain.ErrNotFound)
	require.NoError(t, f.categories.Delete(ctx, tenantA, cat.ID))
	assert.ErrorIs(t, f.categories.Delete(ctx, tenantA, cat.ID), domain.ErrNotFound)

	_, err := f.categories.Get(ctx, tenantA, cat.ID, dto.GetCategoryQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.categories.Get(ctx, tenantA, cat.ID, dto.GetCategoryQuery{
		IncludeDeleted: true, IncludeItens: true, IncludeItensDeleted: true,
	})
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)
	require.NotNil(t, got.ItemsCount)
	assert.Equal(t, 4, *got.ItemsCount)
	for _, it := range *got.Items {
		assert.False(t, it.Active)
		require.NotNil(t, it.DeletedAt)
		assert.Equal(t, *got.DeletedAt, *it.DeletedAt, "todo se elimina con el mismo instante")
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, itemSlugs(*got.Items), "los supervivientes no se renumeran")

	_, err = f.items.Get(ctx, tenantA, inactive.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	other, err := f.items.List(ctx, tenantA, keep.ID, dto.ListItemsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, other.Total)

	// el slug queda libre
	again := f.category(t, tenantA, "Squad", false)
	assert.NotEqual(t, cat.ID, again.ID)
}

func TestCategoryList_PaginacionFiltrosOrden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	names := []string{"planejamento ciclo status", "planejamento squad status", "discovery cenario status", "outra cosa", "zeta"}
	for _, n := range names {
		f.category(t, tenantA, n, false)
	}
	f.category(t, tenantB, "planejamento b", false)

	page, err := f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "discovery cenario status", page.Data[0].Name)
	assert.Nil(t, page.Data[0].Items, "sin includeItens no se adjuntan ítems")
	assert.Nil(t, page.Data[0].ItemsCount)

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "zeta", page.Data[0].Name)

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{Context: "Planejamento"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{Slug: "Zeta"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{Search: "STATUS", OrderBy: "slug", OrderDirection: "DESC"})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "planejamento_squad_status", page.Data[0].Slug)
	assert.Equal(t, "discovery_cenario_status", page.Data[2].Slug)

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{OrderBy: "createdAt", OrderDirection: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "zeta", page.Data[0].Name)

	_, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{OrderBy: "tenantId"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{OrderDirection: "sideways"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCategoryList_PageSizeAcotado(t *testing.T) {
	f := newFixture(t)
	f.categories.paging = Paging{DefaultPageSize: 2, MaxPageSize: 3}
	for _, n := range []string{"a", "b", "c", "d"} {
		f.category(t, tenantA, n, false)
	}
	page, err := f.categories.List(context.Background(), tenantA, dto.ListCategoriesQuery{PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, page.PageSize)
	assert.Len(t, page.Data, 3)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.categories.List(context.Background(), tenantA, dto.ListCategoriesQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.PageSize)
}

func TestList_PaginaFueraDeRango(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)
	f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Ativo"})

	_, err := f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{Page: 1 << 62})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.items.List(ctx, tenantA, cat.ID, dto.ListItemsQuery{Page: math.MaxInt, PageSize: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// una página alta pero representable devuelve vacío con el total real
	page, err := f.items.List(ctx, tenantA, cat.ID, dto.ListItemsQuery{Page: 1000})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1000, page.Page)
}

func TestCategoryList_IncluirItens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)
	empty := f.category(t, tenantA, "Vacia", false)
	f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Zeta", Order: intPtr(1)})
	f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Alfa", Order: intPtr(1)})
	f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Primero", Order: intPtr(0)})
	f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Inactivo", Active: boolPtr(false)})
	gone := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Borrado"})
	require.NoError(t, f.items.Delete(ctx, tenantA, gone.ID))

	page, err := f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{IncludeItens: true})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	squad := page.Data[0]
	require.NotNil(t, squad.ItemsCount)
	assert.Equal(t, 3, *squad.ItemsCount)
	assert.Equal(t, []string{"primero", "alfa", "zeta"}, itemSlugs(*squad.Items))

	vacia := page.Data[1]
	require.NotNil(t, vacia.Items)
	assert.Empty(t, *vacia.Items)
	assert.Equal(t, 0, *vacia.ItemsCount)
	assert.Equal(t, empty.ID, vacia.ID)

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{IncludeItens: true, IncludeItensInativos: true})
	require.NoError(t, err)
	assert.Equal(t, 4, *page.Data[0].ItemsCount)
	assert.NotContains(t, itemSlugs(*page.Data[0].Items), "borrado")

	page, err = f.categories.List(ctx, tenantA, dto.ListCategoriesQuery{IncludeItens: true, IncludeItensDeleted: true})
	require.NoError(t, err)
	assert.Contains(t, itemSlugs(*page.Data[0].Items), "borrado")
	assert.NotContains(t, itemSlugs(*page.Data[0].Items), "inactivo")

	one, err := f.categories.GetBySlug(ctx, tenantA, "SQUAD", dto.GetCategoryQuery{IncludeItens: true})
	require.NoError(t, err)
	assert.Equal(t, 3, *one.ItemsCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ítems
// ──────────────────────────────────────────────────────────────────────────────

func TestItemCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)

	_, err := f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "X", Metadata: map[string]any{catalog.KeyIsTerminal: "sí"}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), catalog.KeyIsTerminal)

	_, err = f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "X", ProductID: strPtr("p1")})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)

	_, err = f.items.Create(ctx, tenantB, cat.ID, dto.CreateItemRequest{Label: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Ação"})
	_, err = f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "Otro", Slug: strPtr("acao")})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "squad")

	require.NoError(t, f.categories.Delete(ctx, tenantA, cat.ID))
	_, err = f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "Tarde"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemCreate_OrdenPorScopeDeProducto(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, tenantA, "Tier", true)

	a := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "A"})
	b := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "B"})
	p1 := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "P1", ProductID: strPtr("prod-1")})
	explicit := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "E", Order: intPtr(10)})
	c := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "C"})
	p1b := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "P1B", ProductID: strPtr(" prod-1 ")})
	dup := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Dup", Order: intPtr(1)})

	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, 0, p1.Order, "cada producto tiene su propia secuencia")
	assert.Equal(t, 10, explicit.Order)
	assert.Equal(t, 11, c.Order)
	assert.Equal(t, 1, p1b.Order)
	assert.Equal(t, "prod-1", *p1b.ProductID)
	assert.Equal(t, 1, dup.Order, "los duplicados de order se aceptan")
}

func TestItemUpdate_MetadataSeReemplaza(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)
	it := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Ativo", Metadata: map[string]any{"a": 1}})

	got, err := f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Metadata: map[string]any{"b": 2}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2}, got.Metadata)

	// metadata ausente no toca lo guardado
	got, err = f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Label: strPtr("Ativo!")})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2}, got.Metadata)
	assert.Equal(t, "Ativo!", got.Label)
	assert.Equal(t, "ativo", got.Slug, "cambiar label no regenera el slug")

	stored, err := f.items.Get(ctx, tenantA, it.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2}, stored.Metadata)

	_, err = f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Metadata: map[string]any{catalog.KeyAllowedTransitions: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemUpdate_ScopeYSlug(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	plain := f.category(t, tenantA, "Squad", false)
	scoped := f.category(t, tenantA, "Tier", true)
	it := f.item(t, tenantA, plain.ID, dto.CreateItemRequest{Label: "Ativo"})
	f.item(t, tenantA, plain.ID, dto.CreateItemRequest{Label: "Inativo"})
	tier := f.item(t, tenantA, scoped.ID, dto.CreateItemRequest{Label: "Committed"})

	_, err := f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{ProductID: strPtr("p1")})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)

	got, err := f.items.Update(ctx, tenantA, tier.ID, dto.UpdateItemRequest{ProductID: strPtr("p1")})
	require.NoError(t, err)
	assert.Equal(t, "p1", *got.ProductID)

	_, err = f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Slug: strPtr("Inativo")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Label: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err = f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Active: boolPtr(false), Order: intPtr(7)})
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, 7, got.Order)

	_, err = f.items.Update(ctx, tenantB, it.ID, dto.UpdateItemRequest{Order: intPtr(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemDelete_Idempotente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)
	it := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Ativo"})

	require.NoError(t, f.items.Delete(ctx, tenantA, it.ID))
	require.NoError(t, f.items.Delete(ctx, tenantA, it.ID))
	assert.ErrorIs(t, f.items.Delete(ctx, tenantB, it.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.items.Delete(ctx, tenantA, "no-existe"), domain.ErrNotFound)

	_, err := f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Label: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// el slug del eliminado se puede reutilizar
	again := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Ativo"})
	assert.Equal(t, "ativo", again.Slug)
}

func TestItemList_FiltrosYPaginacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scoped := f.category(t, tenantA, "Tier", true)
	plain := f.category(t, tenantA, "Squad", false)
	f.item(t, tenantA, scoped.ID, dto.CreateItemRequest{Label: "Global"})
	f.item(t, tenantA, scoped.ID, dto.CreateItemRequest{Label: "Solo P1", ProductID: strPtr("p1")})
	f.item(t, tenantA, scoped.ID, dto.CreateItemRequest{Label: "Solo P2", ProductID: strPtr("p2")})
	f.item(t, tenantA, scoped.ID, dto.CreateItemRequest{Label: "Apagado", Active: boolPtr(false)})

	page, err := f.items.List(ctx, tenantA, scoped.ID, dto.ListItemsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = f.items.List(ctx, tenantA, scoped.ID, dto.ListItemsQuery{ProdutoID: "p1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"global", "solo_p1"}, itemSlugs(page.Data))

	page, err = f.items.List(ctx, tenantA, scoped.ID, dto.ListItemsQuery{IncludeInativos: true, PageSize: 3, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)

	page, err = f.items.List(ctx, tenantA, scoped.ID, dto.ListItemsQuery{Search: "solo"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, err = f.items.List(ctx, tenantA, plain.ID, dto.ListItemsQuery{ProdutoID: "p1"})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)

	_, err = f.items.List(ctx, tenantB, scoped.ID, dto.ListItemsQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras concurrentes
// ──────────────────────────────────────────────────────────────────────────────

// interleavedTx ejecuta before una única vez justo antes de abrir la transacción, es decir
// después de que el caso de uso validó la entrada y antes de que escriba.
type interleavedTx struct {
	repository.TxRunner
	once   sync.Once
	before func()
}

func (i *interleavedTx) Run(ctx context.Context, fn func(repository.CategoryRepository, repository.ItemRepository) error) error {
	i.once.Do(i.before)
	return i.TxRunner.Run(ctx, fn)
}

// concurrentFixture usa el reloj real: el de newFixture no admite lecturas concurrentes.
func concurrentFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.categories.now = time.Now
	f.items.now = time.Now
	return f
}

func TestItemCreate_BorradoDeCategoriaAntesDeEscribir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)
	f.items.tx = &interleavedTx{TxRunner: f.store, before: func() {
		require.NoError(t, f.categories.Delete(ctx, tenantA, cat.ID))
	}}

	_, err := f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "Ativo"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.store.Items().ListByCategories(ctx, tenantA, []string{cat.ID}, repository.ItemInclusion{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, list[cat.ID], "no quedan ítems vivos bajo la categoría eliminada")
}

func TestItemUpdate_BorradoDeCategoriaAntesDeEscribir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Squad", false)
	it := f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Ativo"})
	f.items.tx = &interleavedTx{TxRunner: f.store, before: func() {
		require.NoError(t, f.categories.Delete(ctx, tenantA, cat.ID))
	}}

	_, err := f.items.Update(ctx, tenantA, it.ID, dto.UpdateItemRequest{Active: boolPtr(true)})
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.store.Items().GetByID(ctx, tenantA, it.ID, true)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)
	assert.False(t, got.Active)
}

func TestItemCreate_ProductScopedDesactivadoAntesDeEscribir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Tier", true)
	f.items.tx = &interleavedTx{TxRunner: f.store, before: func() {
		_, err := f.categories.Update(ctx, tenantA, cat.ID, dto.UpdateCategoryRequest{ProductScoped: boolPtr(false)})
		require.NoError(t, err)
	}}

	_, err := f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "Committed", ProductID: strPtr("p1")})
	require.ErrorIs(t, err, domain.ErrInvalidScope)

	bound, err := f.store.Items().CountProductBound(ctx, tenantA, cat.ID)
	require.NoError(t, err)
	assert.Zero(t, bound)
}

func TestCategoryUpdate_ItemDeProductoAntesDeEscribir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cat := f.category(t, tenantA, "Tier", true)
	f.categories.tx = &interleavedTx{TxRunner: f.store, before: func() {
		f.item(t, tenantA, cat.ID, dto.CreateItemRequest{Label: "Committed", ProductID: strPtr("p1")})
	}}

	_, err := f.categories.Update(ctx, tenantA, cat.ID, dto.UpdateCategoryRequest{ProductScoped: boolPtr(false)})
	require.ErrorIs(t, err, domain.ErrInvalidScope)

	got, err := f.categories.Get(ctx, tenantA, cat.ID, dto.GetCategoryQuery{})
	require.NoError(t, err)
	assert.True(t, got.ProductScoped)
}

func TestItemCreate_ConcurrenteConBorradoDeCategoria(t *testing.T) {
	ctx := context.Background()
	f := concurrentFixture(t)
	cat := f.category(t, tenantA, "Squad", false)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		i := i
		g.Go(func() error {
			_, err := f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "Item", Slug: strPtr(numberedSlug(i))})
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error { return f.categories.Delete(ctx, tenantA, cat.ID) })
	require.NoError(t, g.Wait())

	list, err := f.store.Items().ListByCategories(ctx, tenantA, []string{cat.ID}, repository.ItemInclusion{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, list[cat.ID])
}

func TestProductScoped_ConcurrenteConAltasDeProducto(t *testing.T) {
	ctx := context.Background()
	f := concurrentFixture(t)
	cat := f.category(t, tenantA, "Tier", true)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		i := i
		g.Go(func() error {
			_, err := f.items.Create(ctx, tenantA, cat.ID, dto.CreateItemRequest{Label: "Item", Slug: strPtr(numberedSlug(i)), ProductID: strPtr("p1")})
			if err != nil && !errors.Is(err, domain.ErrInvalidScope) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		_, err := f.categories.Update(ctx, tenantA, cat.ID, dto.UpdateCategoryRequest{ProductScoped: boolPtr(false)})
		if err != nil && !errors.Is(err, domain.ErrInvalidScope) {
			return err
		}
		return nil
	})
	require.NoError(t, g.Wait())

	got, err := f.categories.Get(ctx, tenantA, cat.ID, dto.GetCategoryQuery{})
	require.NoError(t, err)
	bound, err := f.store.Items().CountProductBound(ctx, tenantA, cat.ID)
	require.NoError(t, err)
	if !got.ProductScoped {
		assert.Zero(t, bound, "ítems de producto bajo una categoría sin productScoped")
	}
}

func numberedSlug(i int) string {
	return "item_" + strconv.Itoa(i)
}

// ──────────────────────────────────────────────────────────────────────────────
// Seeder
// ──────────────────────────────────────────────────────────────────────────────

func TestSeeder_Idempotente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	defaults := DefaultTaxonomies()

	first, err := f.seeder.Seed(ctx, tenantA, defaults)
	require.NoError(t, err)
	assert.Equal(t, len(defaults), first.CategoriesCreated)
	wantItems := 0
	for _, d := range defaults {
		wantItems += len(d.Items)
	}
	assert.Equal(t, wantItems, first.ItemsCreated)

	second, err := f.seeder.Seed(ctx, tenantA, defaults)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, second)

	v, err := f.items.Resolve(ctx, tenantA, catalog.CategoryPlanningCycleStatus, "planejado")
	require.NoError(t, err)
	planned, err := catalog.PlanningCycleStatusFromValue(v)
	require.NoError(t, err)
	v, err = f.items.Resolve(ctx, tenantA, catalog.CategoryPlanningCycleStatus, "closed")
	require.NoError(t, err)
	closed, err := catalog.PlanningCycleStatusFromValue(v)
	require.NoError(t, err)
	v, err = f.items.Resolve(ctx, tenantA, catalog.CategoryPlanningCycleStatus, "em_andamento")
	require.NoError(t, err)
	running, err := catalog.PlanningCycleStatusFromValue(v)
	require.NoError(t, err)
	assert.True(t, planned.CanTransitionTo(closed))
	assert.True(t, running.CanTransitionTo(closed))
	assert.False(t, running.CanTransitionTo(planned))
	assert.True(t, closed.IsTerminal())
	assert.False(t, running.IsTerminal())

	v, err = f.items.Resolve(ctx, tenantA, catalog.CategorySquadStatus, "inativo")
	require.NoError(t, err)
	squad, err := catalog.SquadStatusFromValue(v)
	require.NoError(t, err)
	assert.False(t, squad.IsActive())

	// otro tenant parte de cero
	other, err := f.seeder.Seed(ctx, tenantB, defaults)
	require.NoError(t, err)
	assert.Equal(t, first, other)
}

func TestSeeder_RespetaLoEliminadoPorElTenant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	defaults := DefaultTaxonomies()
	_, err := f.seeder.Seed(ctx, tenantA, defaults)
	require.NoError(t, err)

	squad, err := f.categories.GetBySlug(ctx, tenantA, catalog.CategorySquadStatus, dto.GetCategoryQuery{})
	require.NoError(t, err)
	v, err := f.items.Resolve(ctx, tenantA, catalog.CategorySquadStatus, "inativo")
	require.NoError(t, err)
	require.NoError(t, f.items.Delete(ctx, tenantA, v.ID()))

	cycle, err := f.categories.GetBySlug(ctx, tenantA, catalog.CategoryPlanningCycleStatus, dto.GetCategoryQuery{})
	require.NoError(t, err)
	require.NoError(t, f.categories.Delete(ctx, tenantA, cycle.ID))

	again, err := f.seeder.Seed(ctx, tenantA, defaults)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, again)

	_, err = f.items.Resolve(ctx, tenantA, catalog.CategorySquadStatus, "inativo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.categories.GetBySlug(ctx, tenantA, catalog.CategoryPlanningCycleStatus, dto.GetCategoryQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	page, err := f.items.List(ctx, tenantA, squad.ID, dto.ListItemsQuery{IncludeDeleted: true, IncludeInativos: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ativo", "inativo"}, itemSlugs(page.Data))
}

func itemSlugs(list []dto.ItemResponse) []string {
	out := make([]string, 0, len(list))
	for _, it := range list {
		out = append(out, it.Slug)
	}
	return out
}
