package parse

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/PoFerry/atelierculinairepof/internal/units"
)

// StripAccents removes combining marks after NFKD decomposition ("pièce" -> "piece").
func StripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// UnitText cleans a free-form unit ("- Kilogrammes", "/g", "Boîte") into a
// token suitable for units.Canonical. Unknown words are returned cleaned but
// otherwise untouched.
func UnitText(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = StripAccents(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\'', '’', '‘', '`', '"', '“', '”', '«', '»':
			return -1
		}
		return r
	}, s)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '–' || r == '—' || unicode.IsSpace(r)
	})
	s = strings.Join(strings.Fields(s), " ")
	return units.Fold(s)
}
