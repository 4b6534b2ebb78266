package taxonomy

import (
	"fmt"
	"math"

	"github.com/jhoicas/taxonomia-api/internal/domain"
)

// Paging límites de paginación de los listados.
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaging valores usados cuando la configuración no los define.
var DefaultPaging = Paging{DefaultPageSize: 20, MaxPageSize: 100}

// normalize devuelve page (>=1) y pageSize acotado, junto con limit/offset para el repositorio.
// Una página cuyo offset no cabe en un int es domain.ErrInvalidInput.
func (p Paging) normalize(page, pageSize int) (int, int, int, int, error) {
	if p.DefaultPageSize <= 0 {
		p = DefaultPaging
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = p.DefaultPageSize
	}
	if p.MaxPageSize > 0 && pageSize > p.MaxPageSize {
		pageSize = p.MaxPageSize
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, 0, 0, 0, fmt.Errorf("%w: page %d fuera de rango", domain.ErrInvalidInput, page)
	}
	return page, pageSize, pageSize, (page - 1) * pageSize, nil
}
