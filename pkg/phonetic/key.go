package phonetic

import "strings"

// RhymeKey is the stress-free textual form of a rhyme tail, e.g. "AE T".
// Two words are perfect rhymes exactly when their keys are equal.
type RhymeKey string

// Tail returns the phonemes from the last primary-stressed vowel to the end.
// Without a primary stress the final vowel is used. The leading vowel keeps
// its stress; later vowels are reset to StressNone so Tail(Tail(p)) == Tail(p).
// A sequence with no vowel yields nil.
func Tail(ph []Phoneme) []Phoneme {
	start := -1
	for i := len(ph) - 1; i >= 0; i-- {
		if ph[i].IsVowel() && ph[i].Stress == StressPrimary {
			start = i
			break
		}
	}
	if start < 0 {
		for i := len(ph) - 1; i >= 0; i-- {
			if ph[i].IsVowel() {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return nil
	}
	out := make([]Phoneme, len(ph)-start)
	copy(out, ph[start:])
	for i := 1; i < len(out); i++ {
		if out[i].IsVowel() {
			out[i].Stress = StressNone
		}
	}
	return out
}

// KeyOf derives the rhyme key of a full phoneme sequence.
func KeyOf(ph []Phoneme) RhymeKey {
	return keyOfTail(Tail(ph))
}

func keyOfTail(tail []Phoneme) RhymeKey {
	syms := make([]string, len(tail))
	for i, p := range tail {
		syms[i] = p.Symbol
	}
	return RhymeKey(strings.Join(syms, " "))
}

// Symbols splits the key back into its phoneme symbols.
func (k RhymeKey) Symbols() []string { return strings.Fields(string(k)) }
