package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taxonomia-api/internal/application/taxonomy"
	"github.com/jhoicas/taxonomia-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC *taxonomy.CategoryUseCase
	ItemUC     *taxonomy.ItemUseCase
	Log        *logger.Logger
	JWTSecret  string
	JWTIssuer  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	api := app.Group("/api")

	// Catálogo (protegido: el tenant sale del token)
	catalog := api.Group("/catalog", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	catalog.Get("/categories", categoryHandler.List)
	catalog.Post("/categories", categoryHandler.Create)
	catalog.Get("/categories/:id", categoryHandler.Get)
	catalog.Patch("/categories/:id", categoryHandler.Update)
	catalog.Delete("/categories/:id", categoryHandler.Delete)

	itemHandler := NewItemHandler(deps.ItemUC, log)
	catalog.Get("/categories/:id/items", itemHandler.List)
	catalog.Post("/categories/:id/items", itemHandler.Create)
	catalog.Get("/items/:id", itemHandler.Get)
	catalog.Patch("/items/:id", itemHandler.Update)
	catalog.Delete("/items/:id", itemHandler.Delete)
}
