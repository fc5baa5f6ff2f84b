// Package slug derives URL-safe identifiers from company and page names,
// folding Turkish and other accented characters to ASCII.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents strips combining marks after canonical decomposition, so
// "ş" becomes "s" and "ö" becomes "o".
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// special covers letters that do not decompose to an ASCII base.
var special = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ß", "ss",
	"ø", "o", "Ø", "o",
	"æ", "ae", "Æ", "ae",
	"&", " ve ",
)

// Make converts an arbitrary display name into a lowercase slug matching
// ^[a-z0-9-]+$. Empty input yields "site".
func Make(name string) string {
	folded, _, err := transform.String(foldAccents, special.Replace(name))
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "site"
	}
	return out
}
