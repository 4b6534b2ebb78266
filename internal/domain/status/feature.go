package status

import (
	"fmt"

	"github.com/jhoicas/taxonomia-api/internal/domain"
)

// FeatureStatus estado de una feature. Sin tabla de transiciones en esta capa:
// cualquier estado puede asignarse directamente.
type FeatureStatus string

const (
	FeatureBacklog    FeatureStatus = "BACKLOG"
	FeaturePlanned    FeatureStatus = "PLANNED"
	FeatureInProgress FeatureStatus = "IN_PROGRESS"
	FeatureBlocked    FeatureStatus = "BLOCKED"
	FeatureDone       FeatureStatus = "DONE"
	FeatureOnHold     FeatureStatus = "ON_HOLD"
)

var _ Status[FeatureStatus] = FeatureBacklog

var featureLabels = map[FeatureStatus]string{
	FeatureBacklog:    "Backlog",
	FeaturePlanned:    "Planificada",
	FeatureInProgress: "En progreso",
	FeatureBlocked:    "Bloqueada",
	FeatureDone:       "Completada",
	FeatureOnHold:     "En pausa",
}

// ParseFeatureStatus construye un FeatureStatus desde un slug; domain.ErrUnknownValue si no existe.
func ParseFeatureStatus(slug string) (FeatureStatus, error) {
	s := FeatureStatus(canonical(slug))
	if _, ok := featureLabels[s]; !ok {
		return "", fmt.Errorf("%w: estado de feature %q", domain.ErrUnknownValue, slug)
	}
	return s, nil
}

func (s FeatureStatus) Value() string { return string(s) }

func (s FeatureStatus) Label() string {
	if l, ok := featureLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s FeatureStatus) IsBlocked() bool { return s == FeatureBlocked }

func (s FeatureStatus) IsDone() bool { return s == FeatureDone }

func (s FeatureStatus) IsTerminal() bool { return s.IsDone() }

// CanTransitionTo siempre es true para destinos válidos.
func (s FeatureStatus) CanTransitionTo(to FeatureStatus) bool {
	_, ok := featureLabels[to]
	return ok
}
