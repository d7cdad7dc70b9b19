// Package phonetic resolves words to ARPAbet-style phoneme sequences, counts
// syllables and derives rhyme keys.
//
// Resolution is a two-variant strategy: a pronunciation dictionary is
// consulted first and a deterministic spelling heuristic is used for any word
// the dictionary does not know. Both variants produce the same Pronunciation
// shape, tagged with the Source that produced it.
package phonetic

import (
	"fmt"
	"strings"
)

// Stress is the lexical stress carried by a vowel phoneme.
type Stress uint8

const (
	StressNone Stress = iota
	StressPrimary
	StressSecondary
)

func (s Stress) String() string {
	switch s {
	case StressPrimary:
		return "primary"
	case StressSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// Phoneme is a single ARPAbet symbol. Stress is only meaningful for vowels.
type Phoneme struct {
	Symbol string
	Stress Stress
}

// IsVowel reports whether the phoneme is a syllable nucleus.
func (p Phoneme) IsVowel() bool {
	_, ok := vowels[p.Symbol]
	return ok
}

// String renders the phoneme the way the CMU dictionary writes it ("AE1", "T").
func (p Phoneme) String() string {
	if !p.IsVowel() {
		return p.Symbol
	}
	switch p.Stress {
	case StressPrimary:
		return p.Symbol + "1"
	case StressSecondary:
		return p.Symbol + "2"
	default:
		return p.Symbol + "0"
	}
}

var vowels = map[string]struct{}{
	"AA": {}, "AE": {}, "AH": {}, "AO": {}, "AW": {}, "AY": {}, "EH": {}, "ER": {},
	"EY": {}, "IH": {}, "IY": {}, "OW": {}, "OY": {}, "UH": {}, "UW": {},
}

var consonants = map[string]struct{}{
	"B": {}, "CH": {}, "D": {}, "DH": {}, "F": {}, "G": {}, "HH": {}, "JH": {},
	"K": {}, "L": {}, "M": {}, "N": {}, "NG": {}, "P": {}, "R": {}, "S": {},
	"SH": {}, "T": {}, "TH": {}, "V": {}, "W": {}, "Y": {}, "Z": {}, "ZH": {},
}

// KnownSymbol reports whether sym (without stress digit) is an ARPAbet symbol.
func KnownSymbol(sym string) bool {
	if _, ok := vowels[sym]; ok {
		return true
	}
	_, ok := consonants[sym]
	return ok
}

// ParsePhoneme parses a CMU-style phoneme such as "AE1" or "T".
func ParsePhoneme(s string) (Phoneme, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Phoneme{}, fmt.Errorf("empty phoneme")
	}
	stress := StressNone
	switch s[len(s)-1] {
	case '0':
		s = s[:len(s)-1]
	case '1':
		stress = StressPrimary
		s = s[:len(s)-1]
	case '2':
		stress = StressSecondary
		s = s[:len(s)-1]
	}
	if !KnownSymbol(s) {
		return Phoneme{}, fmt.Errorf("unknown phoneme %q", s)
	}
	if _, ok := consonants[s]; ok {
		stress = StressNone
	}
	return Phoneme{Symbol: s, Stress: stress}, nil
}

// ParseARPAbet parses a whitespace separated phoneme string ("K AE1 T").
func ParseARPAbet(s string) ([]Phoneme, error) {
	fields := strings.Fields(s)
	out := make([]Phoneme, 0, len(fields))
	for _, f := range fields {
		p, err := ParsePhoneme(f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FormatARPAbet is the inverse of ParseARPAbet.
func FormatARPAbet(ph []Phoneme) string {
	parts := make([]string, len(ph))
	for i, p := range ph {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// Source identifies which resolution strategy produced a Pronunciation.
type Source uint8

const (
	SourceNone Source = iota
	SourceDictionary
	SourceHeuristic
)

func (s Source) String() string {
	switch s {
	case SourceDictionary:
		return "dictionary"
	case SourceHeuristic:
		return "heuristic"
	default:
		return "none"
	}
}

// Pronunciation is the resolved phonetic form of a word. Values are cached
// and shared; callers must treat Phonemes as read-only.
type Pronunciation struct {
	Word     string
	Phonemes []Phoneme
	Source   Source
}

// Syllables is the number of vowel nuclei.
func (p Pronunciation) Syllables() int {
	n := 0
	for _, ph := range p.Phonemes {
		if ph.IsVowel() {
			n++
		}
	}
	return n
}

// Empty reports whether the pronunciation carries no phonemes.
func (p Pronunciation) Empty() bool { return len(p.Phonemes) == 0 }

func (p Pronunciation) String() string { return FormatARPAbet(p.Phonemes) }
