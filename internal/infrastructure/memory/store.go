// Package memory implementa el store de taxonomías en memoria con las mismas restricciones que
// el esquema PostgreSQL (slug único por scope entre filas vivas, FK ítem→categoría del mismo
// tenant). Las transacciones trabajan sobre una copia del estado y la publican al confirmar.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
	"github.com/jhoicas/taxonomia-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	categories map[string]entity.Category
	items      map[string]entity.CatalogItem
}

func (st *state) clone() *state {
	out := &state{
		categories: make(map[string]entity.Category, len(st.categories)),
		items:      make(map[string]entity.CatalogItem, len(st.items)),
	}
	for k, v := range st.categories {
		out.categories[k] = v
	}
	for k, v := range st.items {
		out.items[k] = v
	}
	return out
}

// Store estado compartido protegido por un RWMutex. Las filas se guardan por valor y se
// reemplazan completas en cada escritura, nunca se mutan en sitio.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{state: &state{
		categories: map[string]entity.Category{},
		items:      map[string]entity.CatalogItem{},
	}}
}

// Categories devuelve el repositorio de categorías fuera de transacción.
func (s *Store) Categories() *CategoryRepo {
	return &CategoryRepo{v: view{store: s}}
}

// Items devuelve el repositorio de ítems fuera de transacción.
func (s *Store) Items() *ItemRepo {
	return &ItemRepo{v: view{store: s}}
}

// Run ejecuta fn con el store bloqueado en escritura sobre una copia del estado.
// Si fn devuelve nil la copia reemplaza al estado; si no, se descarta. Ningún lector observa
// estados intermedios.
func (s *Store) Run(ctx context.Context, fn func(categories repository.CategoryRepository, items repository.ItemRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	v := view{store: s, tx: tx}
	if err := fn(&CategoryRepo{v: v}, &ItemRepo{v: v}); err != nil {
		return err
	}
	s.state = tx
	return nil
}

// view resuelve sobre qué estado opera un repositorio: el compartido (con lock) o el de
// una transacción en curso (el lock ya lo tiene Run).
type view struct {
	store *Store
	tx    *state
}

func (v view) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.state)
}

func (v view) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}
