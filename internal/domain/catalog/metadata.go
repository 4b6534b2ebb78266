package catalog

import (
	"fmt"

	"github.com/jhoicas/taxonomia-api/internal/domain"
	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
)

// Claves de metadata con significado para los adaptadores. El resto se ignora.
const (
	KeyAllowedTransitions = "allowedTransitions"
	KeyIsTerminal         = "isTerminal"
	KeyLegacyValue        = "legacyValue"
	KeyRequiresField      = "requiresField"
	KeyRequiresValue      = "requiresValue"
	KeyRequiresConfig     = "requiresConfig"
)

// Metadata es la vista tipada del vocabulario fijo de claves. Un puntero nil significa ausente.
type Metadata struct {
	AllowedTransitions []string
	IsTerminal         *bool
	LegacyValue        *string
	RequiresField      *bool
	RequiresValue      *bool
	RequiresConfig     *bool
}

// ParseMetadata valida las claves conocidas. Una clave conocida con tipo incorrecto
// falla con domain.ErrInvalidInput en vez de ignorarse; un valor null equivale a ausente.
func ParseMetadata(raw entity.Metadata) (Metadata, error) {
	var m Metadata
	if len(raw) == 0 {
		return m, nil
	}

	if v, ok := raw[KeyAllowedTransitions]; ok && v != nil {
		list, err := stringList(v)
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: metadata.%s %s", domain.ErrInvalidInput, KeyAllowedTransitions, err)
		}
		m.AllowedTransitions = list
	}
	if v, ok := raw[KeyLegacyValue]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			return Metadata{}, fmt.Errorf("%w: metadata.%s debe ser string, llegó %T", domain.ErrInvalidInput, KeyLegacyValue, v)
		}
		m.LegacyValue = &s
	}

	flags := []struct {
		key string
		dst **bool
	}{
		{KeyIsTerminal, &m.IsTerminal},
		{KeyRequiresField, &m.RequiresField},
		{KeyRequiresValue, &m.RequiresValue},
		{KeyRequiresConfig, &m.RequiresConfig},
	}
	for _, f := range flags {
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		b, isBool := v.(bool)
		if !isBool {
			return Metadata{}, fmt.Errorf("%w: metadata.%s debe ser booleano, llegó %T", domain.ErrInvalidInput, f.key, v)
		}
		*f.dst = &b
	}
	return m, nil
}

func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("posición %d debe ser string, llegó %T", i, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("debe ser una lista de slugs, llegó %T", v)
	}
}

func flag(b *bool) bool {
	return b != nil && *b
}
