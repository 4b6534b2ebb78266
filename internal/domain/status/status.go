// Package status define la capacidad común de los valores de estado y las máquinas de estado
// fijas en código (epic, feature), que nunca son reconfigurables por tenant.
package status

import "strings"

// Status es la capacidad compartida por los estados fijos en código y por los adaptadores
// de catálogo. T es el propio tipo concreto: cada contexto elige una variante y no las mezcla.
type Status[T any] interface {
	Value() string
	Label() string
	IsTerminal() bool
	CanTransitionTo(to T) bool
}

// canonical lleva un slug externo a la forma de las constantes (IN_PROGRESS).
func canonical(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return strings.ToUpper(s)
}
