package lyrics

import (
	"regexp"
	"strings"
	"unicode"
)

// Version returns the current version of the package.
func Version() string { return "0.2.0" }

var (
	reContributors = regexp.MustCompile(`^\d+\s+Contributors?\b`)
	reEmbed        = regexp.MustCompile(`^\d*\s*Embed$`)
	reVersuri      = regexp.MustCompile(`^\[?[Vv]ersuri`)
)

// StripScrapeNoise removes the page furniture lyric sites mix into the text:
// contributor counts, "<Song> Lyrics" headers, "Embed" footers and
// translation banners. Markers and blank lines are left alone so the result
// can still be segmented.
func StripScrapeNoise(text string) string {
	lines := SplitLines(text)
	kept := lines[:0]
	for _, line := range lines {
		switch {
		case reContributors.MatchString(line):
		case strings.HasSuffix(line, " Lyrics"):
		case reEmbed.MatchString(line):
		case reVersuri.MatchString(line):
		case line == "You might also like":
		default:
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Fields splits a lyric line into its raw whitespace separated tokens.
func Fields(line string) []string { return strings.Fields(line) }

// Word normalises one token for vocabulary counting: lowercased with
// surrounding punctuation removed. Internal apostrophes and hyphens stay.
// It returns "" for tokens that are not alphabetic words.
func Word(token string) string {
	w := strings.ToLower(strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
	if w == "" {
		return ""
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && r != '\'' && r != '’' && r != '-' {
			return ""
		}
	}
	return strings.ReplaceAll(w, "’", "'")
}

// Words returns the vocabulary words of a line in order, repeats included.
func Words(line string) []string {
	var out []string
	for _, tok := range strings.Fields(line) {
		if w := Word(tok); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// LastWord is the final vocabulary word of a line, the one that carries its
// end rhyme.
func LastWord(line string) string {
	ws := Words(line)
	if len(ws) == 0 {
		return ""
	}
	return ws[len(ws)-1]
}
