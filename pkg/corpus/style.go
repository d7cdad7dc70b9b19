package corpus

import (
	"math"
	"strings"

	"github.com/japaniel/lyricist/pkg/lyrics"
	"github.com/japaniel/lyricist/pkg/phonetic"
	"github.com/japaniel/lyricist/pkg/rhyme"
)

// styleVocabularySize caps StyleReport.Vocabulary.
const styleVocabularySize = 30

// StopWords are left out of style vocabularies.
var StopWords = map[string]bool{
	"the": true, "of": true, "and": true, "a": true, "an": true,
	"to": true, "in": true, "on": true, "for": true, "at": true, "by": true,
	"is": true, "it": true, "as": true, "be": true, "was": true,
	"are": true, "with": true, "from": true, "that": true, "this": true,
	"и": true, "в": true, "на": true, "за": true, "от": true, "с": true,
	"да": true, "не": true, "е": true, "а": true, "но": true, "ме": true,
	"те": true, "се": true,
}

// StyleReport describes the writing habits in a text.
type StyleReport struct {
	Lines            int                 `json:"lines"`
	Vocabulary       []rhyme.WordCount   `json:"vocabulary"`
	RhymePatterns    []phonetic.RhymeKey `json:"rhyme_patterns"`
	RhymeScheme      string              `json:"rhyme_scheme"`
	AverageSyllables float64             `json:"avg_syllables"`
}

// AnalyzeStyle reports the top vocabulary (stop words and single letters
// excluded), the rhyme key of every line ending, the resulting rhyme scheme
// and the mean syllables per line rounded to one decimal. Markers and blank
// lines are ignored. The corpus itself is not modified.
func (c *Corpus) AnalyzeStyle(text string) StyleReport {
	rep := StyleReport{Vocabulary: []rhyme.WordCount{}, RhymePatterns: []phonetic.RhymeKey{}}
	counts := make(map[string]int)
	letters := make(map[phonetic.RhymeKey]byte)
	var scheme strings.Builder
	total := 0

	for _, line := range lyrics.SplitLines(text) {
		if line == "" {
			continue
		}
		if _, ok := lyrics.IsMarker(line); ok {
			continue
		}
		rep.Lines++
		for _, w := range lyrics.Words(line) {
			if StopWords[w] || len([]rune(w)) <= 1 {
				continue
			}
			counts[w]++
		}
		total += c.resolver.LineSyllables(line)

		key := c.resolver.Key(lyrics.LastWord(line))
		rep.RhymePatterns = append(rep.RhymePatterns, key)
		scheme.WriteByte(schemeLetter(letters, key))
	}
	if rep.Lines == 0 {
		return rep
	}

	for w, n := range counts {
		rep.Vocabulary = append(rep.Vocabulary, rhyme.WordCount{Word: w, Count: n})
	}
	sortCounts(rep.Vocabulary)
	if len(rep.Vocabulary) > styleVocabularySize {
		rep.Vocabulary = rep.Vocabulary[:styleVocabularySize]
	}
	rep.RhymeScheme = scheme.String()
	rep.AverageSyllables = math.Round(float64(total)/float64(rep.Lines)*10) / 10
	return rep
}

// schemeLetter assigns A, B, C... to rhyme keys in order of first use.
// Lines without a key get '-'; past Z letters wrap to lowercase.
func schemeLetter(letters map[phonetic.RhymeKey]byte, key phonetic.RhymeKey) byte {
	if key == "" {
		return '-'
	}
	if l, ok := letters[key]; ok {
		return l
	}
	n := len(letters)
	var l byte
	switch {
	case n < 26:
		l = byte('A' + n)
	case n < 52:
		l = byte('a' + n - 26)
	default:
		l = '*'
	}
	letters[key] = l
	return l
}
