package catalog

import (
	"strings"

	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
	"github.com/jhoicas/taxonomia-api/internal/domain/status"
)

// Slugs de las categorías a las que está atado cada adaptador.
const (
	CategoryScenarioStatus      = "discovery_cenario_status"
	CategoryPlanningCycleStatus = "planejamento_ciclo_status"
	CategorySquadStatus         = "planejamento_squad_status"
	CategoryCommitmentTier      = "planejamento_compromisso_tier"
)

var (
	planningCycleTerminalSlugs = []string{"closed", "encerrado"}
	squadActiveValues          = []string{"ativo", "active"}
)

var (
	_ status.Status[ScenarioStatus]      = ScenarioStatus{}
	_ status.Status[PlanningCycleStatus] = PlanningCycleStatus{}
	_ status.Status[SquadStatus]         = SquadStatus{}
	_ status.Status[CommitmentTier]      = CommitmentTier{}
)

// statusValue interpreta la metadata de un CatalogValue. terminalSlugs es la heurística
// de terminalidad del adaptador cuando la metadata no trae isTerminal.
type statusValue struct {
	value         CatalogValue
	terminalSlugs []string
}

func newStatusValue(item *entity.CatalogItem, category string, terminalSlugs []string) (statusValue, error) {
	v, err := FromItem(item, category)
	if err != nil {
		return statusValue{}, err
	}
	return statusValue{value: v, terminalSlugs: terminalSlugs}, nil
}

func wrapValue(v CatalogValue, category string, terminalSlugs []string) (statusValue, error) {
	// Reconstruye desde los campos para repetir la verificación de categoría.
	return newStatusValue(&entity.CatalogItem{
		ID:           v.id,
		Slug:         v.slug,
		Label:        v.label,
		CategorySlug: v.categorySlug,
		Metadata:     v.metadata,
	}, category, terminalSlugs)
}

// CatalogValue devuelve el valor envuelto.
func (s statusValue) CatalogValue() CatalogValue { return s.value }

func (s statusValue) ID() string    { return s.value.id }
func (s statusValue) Slug() string  { return s.value.slug }
func (s statusValue) Label() string { return s.value.label }

// Value devuelve legacyValue si existe; si no, el slug.
func (s statusValue) Value() string {
	if s.value.schema.LegacyValue != nil {
		return *s.value.schema.LegacyValue
	}
	return s.value.slug
}

// IsTerminal prioriza metadata.isTerminal; si falta, aplica la heurística del adaptador.
func (s statusValue) IsTerminal() bool {
	if s.value.schema.IsTerminal != nil {
		return *s.value.schema.IsTerminal
	}
	return containsFold(s.terminalSlugs, s.value.slug)
}

// canTransitionTo: lista vacía o ausente ⇒ sin restricción.
func (s statusValue) canTransitionTo(to statusValue) bool {
	allowed := s.value.schema.AllowedTransitions
	if len(allowed) == 0 {
		return true
	}
	return containsFold(allowed, to.value.slug)
}

// Flags para los editores de reglas de automatización.
func (s statusValue) RequiresField() bool  { return flag(s.value.schema.RequiresField) }
func (s statusValue) RequiresValue() bool  { return flag(s.value.schema.RequiresValue) }
func (s statusValue) RequiresConfig() bool { return flag(s.value.schema.RequiresConfig) }

func containsFold(list []string, s string) bool {
	for _, e := range list {
		if strings.EqualFold(strings.TrimSpace(e), s) {
			return true
		}
	}
	return false
}

// ScenarioStatus estado de un escenario de discovery. Sin heurística de terminalidad.
type ScenarioStatus struct{ statusValue }

func ScenarioStatusFromItem(item *entity.CatalogItem) (ScenarioStatus, error) {
	sv, err := newStatusValue(item, CategoryScenarioStatus, nil)
	return ScenarioStatus{sv}, err
}

func ScenarioStatusFromValue(v CatalogValue) (ScenarioStatus, error) {
	sv, err := wrapValue(v, CategoryScenarioStatus, nil)
	return ScenarioStatus{sv}, err
}

func (s ScenarioStatus) CanTransitionTo(to ScenarioStatus) bool { return s.canTransitionTo(to.statusValue) }
func (s ScenarioStatus) Equal(o ScenarioStatus) bool            { return s.value.Equal(o.value) }

// PlanningCycleStatus estado de un ciclo de planificación. Sin metadata, "closed" es terminal.
type PlanningCycleStatus struct{ statusValue }

func PlanningCycleStatusFromItem(item *entity.CatalogItem) (PlanningCycleStatus, error) {
	sv, err := newStatusValue(item, CategoryPlanningCycleStatus, planningCycleTerminalSlugs)
	return PlanningCycleStatus{sv}, err
}

func PlanningCycleStatusFromValue(v CatalogValue) (PlanningCycleStatus, error) {
	sv, err := wrapValue(v, CategoryPlanningCycleStatus, planningCycleTerminalSlugs)
	return PlanningCycleStatus{sv}, err
}

func (s PlanningCycleStatus) CanTransitionTo(to PlanningCycleStatus) bool {
	return s.canTransitionTo(to.statusValue)
}
func (s PlanningCycleStatus) Equal(o PlanningCycleStatus) bool { return s.value.Equal(o.value) }

// SquadStatus estado de un squad.
type SquadStatus struct{ statusValue }

func SquadStatusFromItem(item *entity.CatalogItem) (SquadStatus, error) {
	sv, err := newStatusValue(item, CategorySquadStatus, nil)
	return SquadStatus{sv}, err
}

func SquadStatusFromValue(v CatalogValue) (SquadStatus, error) {
	sv, err := wrapValue(v, CategorySquadStatus, nil)
	return SquadStatus{sv}, err
}

func (s SquadStatus) CanTransitionTo(to SquadStatus) bool { return s.canTransitionTo(to.statusValue) }
func (s SquadStatus) Equal(o SquadStatus) bool            { return s.value.Equal(o.value) }

// IsActive compara legacyValue (o el slug si falta) contra {"ativo", "active"}.
func (s SquadStatus) IsActive() bool {
	return containsFold(squadActiveValues, s.Value())
}

// CommitmentTier nivel de compromiso de un item de planificación.
type CommitmentTier struct{ statusValue }

func CommitmentTierFromItem(item *entity.CatalogItem) (CommitmentTier, error) {
	sv, err := newStatusValue(item, CategoryCommitmentTier, nil)
	return CommitmentTier{sv}, err
}

func CommitmentTierFromValue(v CatalogValue) (CommitmentTier, error) {
	sv, err := wrapValue(v, CategoryCommitmentTier, nil)
	return CommitmentTier{sv}, err
}

func (s CommitmentTier) CanTransitionTo(to CommitmentTier) bool { return s.canTransitionTo(to.statusValue) }
func (s CommitmentTier) Equal(o CommitmentTier) bool            { return s.value.Equal(o.value) }
