// Package rhyme grades how well two words rhyme and keeps an index of words
// grouped by rhyme key.
package rhyme

import (
	"fmt"

	"github.com/japaniel/lyricist/pkg/phonetic"
)

// Tier is the strength of a rhyme. Higher values are stronger.
type Tier int

const (
	None Tier = iota
	Slant
	Near
	Perfect
)

func (t Tier) String() string {
	switch t {
	case Perfect:
		return "perfect"
	case Near:
		return "near"
	case Slant:
		return "slant"
	default:
		return "none"
	}
}

// MarshalText renders the tier by name.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Classify grades two pronunciations by comparing their rhyme tails.
func Classify(a, b phonetic.Pronunciation) Tier {
	return ClassifyTails(phonetic.Tail(a.Phonemes), phonetic.Tail(b.Phonemes))
}

// ClassifyTails grades two rhyme tails. Tiers are tested strongest first and
// the first match wins:
//
//   - Perfect: identical symbol sequences.
//   - Near: same length, identical except for a final consonant pair listed
//     in the near table.
//   - Slant: same vowel sequence with different consonants, or the same
//     final consonant after differing vowels.
//
// Tails containing symbols outside the ARPAbet inventory are a programming
// error and cause a panic.
func ClassifyTails(a, b []phonetic.Phoneme) Tier {
	mustKnown(a)
	mustKnown(b)
	if len(a) == 0 || len(b) == 0 {
		return None
	}
	if sameSymbols(a, b) {
		return Perfect
	}

	la, lb := a[len(a)-1], b[len(b)-1]
	consonantEnds := !la.IsVowel() && !lb.IsVowel()
	if len(a) == len(b) && consonantEnds && sameSymbols(a[:len(a)-1], b[:len(b)-1]) && NearPair(la.Symbol, lb.Symbol) {
		return Near
	}
	if sameSymbols(vowelsOf(a), vowelsOf(b)) {
		return Slant
	}
	if consonantEnds && la.Symbol == lb.Symbol {
		return Slant
	}
	return None
}

func mustKnown(ph []phonetic.Phoneme) {
	for _, p := range ph {
		if !phonetic.KnownSymbol(p.Symbol) {
			panic(fmt.Sprintf("rhyme: unknown phoneme symbol %q", p.Symbol))
		}
	}
}

func sameSymbols(a, b []phonetic.Phoneme) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Symbol != b[i].Symbol {
			return false
		}
	}
	return true
}

func vowelsOf(ph []phonetic.Phoneme) []phonetic.Phoneme {
	out := make([]phonetic.Phoneme, 0, len(ph))
	for _, p := range ph {
		if p.IsVowel() {
			out = append(out, p)
		}
	}
	return out
}

// Classifier grades words using a shared Resolver.
type Classifier struct {
	resolver *phonetic.Resolver
}

// NewClassifier returns a classifier backed by r.
func NewClassifier(r *phonetic.Resolver) *Classifier {
	return &Classifier{resolver: r}
}

// Classify resolves both words and grades them. Words without vowels never
// rhyme.
func (c *Classifier) Classify(wordA, wordB string) Tier {
	return Classify(c.resolver.Resolve(wordA), c.resolver.Resolve(wordB))
}
