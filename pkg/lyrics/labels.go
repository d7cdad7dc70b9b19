package lyrics

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Label spellings seen on lyric sites, after cleaning. Bulgarian, Russian
// and Romanian names sit next to the English ones.
var labelAliases = map[string]SectionType{
	"intro":        Intro,
	"introduction": Intro,
	"уводно":       Intro,
	"интро":        Intro,

	"prechorus": PreHook,
	"prehook":   PreHook,
	"prerefren": PreHook,
	"preref":    PreHook,
	"предприпев": PreHook,

	"chorus":  Hook,
	"hook":    Hook,
	"refrain": Hook,
	"refren":  Hook,
	"припев":  Hook,
	"рефрен":  Hook,

	"postchorus": PostHook,
	"posthook":   PostHook,
	"postrefren": PostHook,

	"verse":  Verse,
	"vers":   Verse,
	"strofa": Verse,
	"куплет": Verse,
	"строфа": Verse,

	"bridge": Bridge,
	"pod":    Bridge,
	"мост":   Bridge,
	"бридж":  Bridge,

	"outro":  Outro,
	"coda":   Outro,
	"аутро":  Outro,
	"финал":  Outro,
	"изход":  Outro,
	"ending": Outro,
}

// aliasesByLength is the prefix-match order: longest alias first so
// "prechorus" is tried before "pre...", ties alphabetically.
var aliasesByLength = func() []string {
	keys := make([]string, 0, len(labelAliases))
	for k := range labelAliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len([]rune(keys[i])) != len([]rune(keys[j])) {
			return len([]rune(keys[i])) > len([]rune(keys[j]))
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var reParenthetical = regexp.MustCompile(`\([^)]*\)`)

// cleanLabel strips brackets, anything after a colon (performer credits),
// parentheticals such as "(x2)", digits, spacing and punctuation.
func cleanLabel(label string) string {
	s := strings.TrimSpace(label)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if i := strings.IndexAny(s, ":："); i >= 0 {
		s = s[:i]
	}
	s = reParenthetical.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeLabel maps a free-form section label ("[Chorus: Artist]",
// "Verse 2 (x2)", "Припев") to its SectionType. Exact alias matches win,
// then the longest alias the label starts with; anything else is Unknown.
func NormalizeLabel(label string) SectionType {
	clean := cleanLabel(label)
	if clean == "" {
		return Unknown
	}
	if t, ok := labelAliases[clean]; ok {
		return t
	}
	for _, alias := range aliasesByLength {
		if strings.HasPrefix(clean, alias) {
			return labelAliases[alias]
		}
	}
	return Unknown
}
