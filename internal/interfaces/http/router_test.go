package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taxonomia-api/internal/application/taxonomy"
	"github.com/jhoicas/taxonomia-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/taxonomia-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/taxonomia-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testSubject   = "00000000-0000-0000-0000-000000000001"
	testTenantA   = "tenant-a"
	testTenantB   = "tenant-b"
	testIssuer    = "taxonomia-api-test"
	testExpMin    = 60
)

// buildTestApp monta el router completo sobre el store en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.New()
	categoryUC := taxonomy.NewCategoryUseCase(store.Categories(), store.Items(), store, nil, taxonomy.DefaultPaging)
	itemUC := taxonomy.NewItemUseCase(store.Categories(), store.Items(), store, nil, taxonomy.DefaultPaging)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CategoryUC: categoryUC,
		ItemUC:     itemUC,
		JWTSecret:  testJWTSecret,
		JWTIssuer:  testIssuer,
	})
	return app
}

func tokenFor(t *testing.T, tenantID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testSubject, tenantID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// call lanza la petición y devuelve status y cuerpo decodificado (nil si no hay cuerpo).
func call(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_SinTokenOTokenInvalido(t *testing.T) {
	app := buildTestApp(t)

	status, body := call(t, app, http.MethodGet, "/api/catalog/categories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/catalog/categories", "Token abc", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])

	status, _ = call(t, app, http.MethodGet, "/api/catalog/categories", "Bearer no.es.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	tok, err := pkgjwt.Generate("otro-secreto", testSubject, testTenantA, testIssuer, testExpMin)
	require.NoError(t, err)
	status, _ = call(t, app, http.MethodGet, "/api/catalog/categories", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	tok, err = pkgjwt.Generate(testJWTSecret, testSubject, testTenantA, "otro-emisor", testExpMin)
	require.NoError(t, err)
	status, body = call(t, app, http.MethodGet, "/api/catalog/categories", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/catalog/categories", tokenFor(t, ""), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TENANT", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Forma de los payloads
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoriaEItem_FormaDelPayload(t *testing.T) {
	app := buildTestApp(t)
	auth := tokenFor(t, testTenantA)

	status, cat := call(t, app, http.MethodPost, "/api/catalog/categories", auth, map[string]any{
		"name": "Status de squad", "slug": "planejamento_squad_status",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.ElementsMatch(t,
		[]string{"id", "tenantId", "slug", "name", "description", "productScoped", "createdAt", "updatedAt", "deletedAt"},
		keys(cat), "sin includeItens no hay itemsCount ni items")
	assert.Equal(t, testTenantA, cat["tenantId"])
	assert.Nil(t, cat["deletedAt"])
	categoryID := cat["id"].(string)

	status, item := call(t, app, http.MethodPost, "/api/catalog/categories/"+categoryID+"/items", auth, map[string]any{
		"label": "Ativo", "metadata": map[string]any{"legacyValue": "ativo"},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.ElementsMatch(t,
		[]string{"id", "tenantId", "categoryId", "categorySlug", "slug", "label", "description", "order",
			"active", "metadata", "productId", "createdAt", "updatedAt", "deletedAt"},
		keys(item))
	assert.Equal(t, "planejamento_squad_status", item["categorySlug"])
	assert.Equal(t, "ativo", item["slug"])
	assert.Equal(t, float64(0), item["order"])
	assert.Equal(t, true, item["active"])
	assert.Equal(t, map[string]any{"legacyValue": "ativo"}, item["metadata"])

	status, page := call(t, app, http.MethodGet, "/api/catalog/categories?includeItens=true", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{"data", "total", "page", "pageSize", "totalPages"}, keys(page))
	assert.Equal(t, float64(1), page["total"])
	assert.Equal(t, float64(1), page["totalPages"])
	data := page["data"].([]any)
	require.Len(t, data, 1)
	first := data[0].(map[string]any)
	assert.Equal(t, float64(1), first["itemsCount"])
	assert.Len(t, first["items"], 1)

	status, items := call(t, app, http.MethodGet, "/api/catalog/categories/"+categoryID+"/items?pageSize=5", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), items["pageSize"])
	assert.Len(t, items["data"], 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida y mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestCicloDeVida_YMapeoDeErrores(t *testing.T) {
	app := buildTestApp(t)
	auth := tokenFor(t, testTenantA)

	status, body := call(t, app, http.MethodPost, "/api/catalog/categories", auth, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	_, cat := call(t, app, http.MethodPost, "/api/catalog/categories", auth, map[string]any{"name": "Ação"})
	categoryID := cat["id"].(string)

	status, body = call(t, app, http.MethodPost, "/api/catalog/categories", auth, map[string]any{"name": "acao"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/catalog/categories/"+categoryID+"/items", auth,
		map[string]any{"label": "X", "productId": "p1"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_SCOPE", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/catalog/categories?orderBy=tenantId", auth, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/catalog/categories?page=4611686018427387904", auth, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/catalog/categories?page=abc", auth, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUERY", body["code"])

	// otro tenant no ve la categoría
	status, body = call(t, app, http.MethodGet, "/api/catalog/categories/"+categoryID, tokenFor(t, testTenantB), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	_, item := call(t, app, http.MethodPost, "/api/catalog/categories/"+categoryID+"/items", auth,
		map[string]any{"label": "Ativo", "metadata": map[string]any{"a": 1}})
	itemID := item["id"].(string)

	status, item = call(t, app, http.MethodPatch, "/api/catalog/items/"+itemID, auth,
		map[string]any{"metadata": map[string]any{"b": 2}, "order": 4})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"b": float64(2)}, item["metadata"])
	assert.Equal(t, float64(4), item["order"])

	status, body = call(t, app, http.MethodPatch, "/api/catalog/items/"+itemID, auth,
		map[string]any{"metadata": map[string]any{"isTerminal": "sí"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, _ = call(t, app, http.MethodDelete, "/api/catalog/items/"+itemID, auth, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = call(t, app, http.MethodDelete, "/api/catalog/items/"+itemID, auth, nil)
	assert.Equal(t, http.StatusNoContent, status, "borrar un ítem dos veces no falla")

	status, _ = call(t, app, http.MethodGet, "/api/catalog/items/"+itemID, auth, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, cat = call(t, app, http.MethodPatch, "/api/catalog/categories/"+categoryID, auth,
		map[string]any{"description": "Acciones"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Acciones", cat["description"])

	status, _ = call(t, app, http.MethodDelete, "/api/catalog/categories/"+categoryID, auth, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = call(t, app, http.MethodDelete, "/api/catalog/categories/"+categoryID, auth, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, cat = call(t, app, http.MethodGet,
		"/api/catalog/categories/"+categoryID+"?includeDeleted=true&includeItens=true&includeItensDeleted=true", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, cat["deletedAt"])
	assert.Equal(t, float64(1), cat["itemsCount"])
}

func TestProdutoIDFiltraItens(t *testing.T) {
	app := buildTestApp(t)
	auth := tokenFor(t, testTenantA)

	_, cat := call(t, app, http.MethodPost, "/api/catalog/categories", auth,
		map[string]any{"name": "Tier", "productScoped": true})
	base := "/api/catalog/categories/" + cat["id"].(string) + "/items"
	call(t, app, http.MethodPost, base, auth, map[string]any{"label": "Global"})
	call(t, app, http.MethodPost, base, auth, map[string]any{"label": "P1", "productId": "p1"})
	call(t, app, http.MethodPost, base, auth, map[string]any{"label": "P2", "productId": "p2"})

	status, page := call(t, app, http.MethodGet, base+"?produtoId=p1", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), page["total"])

	status, page = call(t, app, http.MethodGet, base, auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), page["total"])
}
