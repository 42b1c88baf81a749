// Package textnorm normaliza texto para búsquedas sin distinguir mayúsculas ni tildes.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold descompone (NFD), elimina marcas diacríticas, recompone y pasa a minúsculas.
// "Hematología" y "HEMATOLOGIA" producen el mismo resultado.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Contains informa si needle aparece en haystack tras normalizar ambos. needle vacío coincide siempre.
func Contains(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return true
	}
	return strings.Contains(Fold(haystack), n)
}

// Matcher precalcula la forma normalizada de la consulta para filtrar listas largas.
type Matcher struct {
	needle string
}

// NewMatcher construye un Matcher para query.
func NewMatcher(query string) Matcher {
	return Matcher{needle: Fold(query)}
}

// Match informa si s contiene la consulta.
func (m Matcher) Match(s string) bool {
	return m.needle == "" || strings.Contains(Fold(s), m.needle)
}
