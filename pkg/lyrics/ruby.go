package lyrics

import "regexp"

var (
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// StripRuby removes ruby readings (<rt>) and their fallback parentheses
// (<rp>) from an HTML page, so annotated lyrics ("漢字" over "かんじ")
// extract as the base text only. It works on raw bytes and is safe for
// Shift_JIS input, where '<' never appears as a trailing byte.
func StripRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}
