package status

import (
	"fmt"

	"github.com/jhoicas/taxonomia-api/internal/domain"
)

// EpicStatus estado del ciclo de vida de un épico, con tabla de transiciones fija.
type EpicStatus string

const (
	EpicPlanned    EpicStatus = "PLANNED"
	EpicInProgress EpicStatus = "IN_PROGRESS"
	EpicAtRisk     EpicStatus = "AT_RISK"
	EpicDone       EpicStatus = "DONE"
	EpicOnHold     EpicStatus = "ON_HOLD"
)

var _ Status[EpicStatus] = EpicPlanned

var epicLabels = map[EpicStatus]string{
	EpicPlanned:    "Planificado",
	EpicInProgress: "En progreso",
	EpicAtRisk:     "En riesgo",
	EpicDone:       "Completado",
	EpicOnHold:     "En pausa",
}

var epicTransitions = map[EpicStatus][]EpicStatus{
	EpicPlanned:    {EpicInProgress, EpicOnHold, EpicAtRisk},
	EpicInProgress: {EpicAtRisk, EpicDone, EpicOnHold},
	EpicAtRisk:     {EpicInProgress, EpicOnHold, EpicDone},
	EpicDone:       {},
	EpicOnHold:     {EpicInProgress, EpicPlanned},
}

// EpicStatuses devuelve los estados en orden de ciclo de vida.
func EpicStatuses() []EpicStatus {
	return []EpicStatus{EpicPlanned, EpicInProgress, EpicAtRisk, EpicDone, EpicOnHold}
}

// ParseEpicStatus construye un EpicStatus desde un slug ("in_progress", "In-Progress", ...).
// Falla con domain.ErrUnknownValue fuera del conjunto cerrado.
func ParseEpicStatus(slug string) (EpicStatus, error) {
	s := EpicStatus(canonical(slug))
	if _, ok := epicLabels[s]; !ok {
		return "", fmt.Errorf("%w: estado de épico %q", domain.ErrUnknownValue, slug)
	}
	return s, nil
}

// Value devuelve la representación externa.
func (s EpicStatus) Value() string { return string(s) }

// Label devuelve la etiqueta legible.
func (s EpicStatus) Label() string {
	if l, ok := epicLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsFinal es true solo para DONE.
func (s EpicStatus) IsFinal() bool { return s == EpicDone }

// IsTerminal alias de IsFinal para cumplir Status.
func (s EpicStatus) IsTerminal() bool { return s.IsFinal() }

// CanTransitionTo consulta la tabla fija.
func (s EpicStatus) CanTransitionTo(to EpicStatus) bool {
	for _, allowed := range epicTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions devuelve una copia de los destinos permitidos.
func (s EpicStatus) AllowedTransitions() []EpicStatus {
	return append([]EpicStatus(nil), epicTransitions[s]...)
}

// TransitionTo devuelve el destino si la transición está en la tabla; si no,
// domain.ErrInvalidTransition con ambas etiquetas.
func (s EpicStatus) TransitionTo(to EpicStatus) (EpicStatus, error) {
	if !s.CanTransitionTo(to) {
		return s, fmt.Errorf("%w: de %q a %q", domain.ErrInvalidTransition, s.Label(), to.Label())
	}
	return to, nil
}
