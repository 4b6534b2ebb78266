package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Se envuelven con contexto vía fmt.Errorf("%w: ...") y se comparan con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidScope      = errors.New("scope de producto inválido")
	ErrCategoryMismatch  = errors.New("el ítem no pertenece a la categoría esperada")
	ErrUnknownValue      = errors.New("valor desconocido")
	ErrInvalidTransition = errors.New("transición no permitida")
)
