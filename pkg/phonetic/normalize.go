package phonetic

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ligatures = strings.NewReplacer("æ", "ae", "œ", "oe", "ø", "o", "ß", "ss", "ł", "l", "đ", "d")

// CleanToken lowercases a raw token and trims surrounding punctuation,
// keeping internal apostrophes and hyphens ("don't", "well-known").
func CleanToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	return strings.TrimFunc(t, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// LettersOnly folds a cleaned token down to the letters the spelling
// heuristic understands. Latin diacritics are removed ("café" -> "cafe");
// Cyrillic text is left intact apart from case. Everything that is not a
// Latin or Cyrillic letter is dropped.
func LettersOnly(token string) string {
	t := strings.ToLower(token)
	if HasCyrillic(t) {
		t = norm.NFC.String(t)
	} else {
		t = ligatures.Replace(t)
		folded, _, err := transform.String(foldLatin(), t)
		if err == nil {
			t = folded
		}
	}
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case isCyrillicLetter(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// foldLatin is built per call: transform.Transformer values carry state and
// are not safe for concurrent use.
func foldLatin() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// HasCyrillic reports whether s contains at least one Cyrillic letter.
func HasCyrillic(s string) bool {
	for _, r := range s {
		if isCyrillicLetter(r) {
			return true
		}
	}
	return false
}

func isCyrillicLetter(r rune) bool {
	return unicode.Is(unicode.Cyrillic, r) && unicode.IsLetter(r)
}

// SplitCompound splits a cleaned token on internal hyphens. Apostrophes stay
// with their part ("don't", "rock'n'roll").
func SplitCompound(token string) []string {
	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '-' || r == '\u2010' || r == '\u2013' || r == '\u2014'
	})
	out := parts[:0]
	for _, p := range parts {
		if LettersOnly(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
