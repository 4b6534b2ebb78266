package taxonomy

import "github.com/jhoicas/taxonomia-api/internal/domain/catalog"

// DefaultItem valor inicial de una categoría por defecto.
type DefaultItem struct {
	Slug     string
	Label    string
	Metadata map[string]any
}

// DefaultCategory categoría que se crea para cada tenant nuevo.
type DefaultCategory struct {
	Slug          string
	Name          string
	Description   string
	ProductScoped bool
	Items         []DefaultItem
}

// DefaultTaxonomies categorías de los adaptadores de estado con sus valores iniciales.
// Los legacyValue reproducen los strings que usaban los enums anteriores a las taxonomías.
func DefaultTaxonomies() []DefaultCategory {
	return []DefaultCategory{
		{
			Slug:        catalog.CategorySquadStatus,
			Name:        "Status de squad",
			Description: "Situación operativa de un squad",
			Items: []DefaultItem{
				{Slug: "ativo", Label: "Ativo", Metadata: map[string]any{catalog.KeyLegacyValue: "ativo"}},
				{Slug: "inativo", Label: "Inativo", Metadata: map[string]any{catalog.KeyLegacyValue: "inativo"}},
			},
		},
		{
			Slug:        catalog.CategoryPlanningCycleStatus,
			Name:        "Status de ciclo de planejamento",
			Description: "Etapas de un ciclo de planificación",
			Items: []DefaultItem{
				{Slug: "planejado", Label: "Planejado", Metadata: map[string]any{
					catalog.KeyAllowedTransitions: []any{"em_andamento", "closed"},
				}},
				{Slug: "em_andamento", Label: "Em andamento", Metadata: map[string]any{
					catalog.KeyAllowedTransitions: []any{"closed"},
				}},
				{Slug: "closed", Label: "Encerrado", Metadata: map[string]any{
					catalog.KeyIsTerminal: true,
				}},
			},
		},
		{
			Slug:        catalog.CategoryScenarioStatus,
			Name:        "Status de cenário",
			Description: "Estados de un escenario de discovery",
			Items: []DefaultItem{
				{Slug: "draft", Label: "Rascunho", Metadata: map[string]any{
					catalog.KeyAllowedTransitions: []any{"published"},
				}},
				{Slug: "published", Label: "Publicado"},
				{Slug: "archived", Label: "Arquivado", Metadata: map[string]any{catalog.KeyIsTerminal: true}},
			},
		},
		{
			Slug:          catalog.CategoryCommitmentTier,
			Name:          "Tier de compromisso",
			Description:   "Nivel de compromiso de un ítem planificado",
			ProductScoped: true,
			Items: []DefaultItem{
				{Slug: "committed", Label: "Comprometido", Metadata: map[string]any{catalog.KeyLegacyValue: "COMMITTED"}},
				{Slug: "stretch", Label: "Stretch", Metadata: map[string]any{catalog.KeyLegacyValue: "STRETCH"}},
			},
		},
	}
}
