// Package slug normaliza identificadores legibles para usarlos como claves únicas por scope.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator reemplaza cada secuencia de caracteres no alfanuméricos.
const Separator = '_'

// Normalize quita diacríticos, pasa a minúsculas, colapsa cada secuencia no alfanumérica
// en un único Separator y recorta separadores en los extremos.
// Es idempotente: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSep := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteRune(Separator)
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// FromOptional devuelve la versión normalizada de explicit si no está vacío; si no, la de fallback.
func FromOptional(explicit *string, fallback string) string {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		return Normalize(*explicit)
	}
	return Normalize(fallback)
}
