package phonetic

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLexicon map[string]string

func (m mapLexicon) Lookup(word string) ([]Phoneme, bool) {
	s, ok := m[word]
	if !ok {
		return nil, false
	}
	ph, err := ParseARPAbet(s)
	if err != nil {
		return nil, false
	}
	return ph, true
}

func TestParsePhoneme(t *testing.T) {
	tests := []struct {
		in      string
		want    Phoneme
		wantErr bool
	}{
		{"AE1", Phoneme{"AE", StressPrimary}, false},
		{"ah0", Phoneme{"AH", StressNone}, false},
		{"ER2", Phoneme{"ER", StressSecondary}, false},
		{"T", Phoneme{"T", StressNone}, false},
		{"XX1", Phoneme{}, true},
		{"", Phoneme{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePhoneme(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	ph, err := ParseARPAbet("K AE1 T")
	require.NoError(t, err)
	assert.Equal(t, "K AE1 T", FormatARPAbet(ph))
}

func TestLettersOnly(t *testing.T) {
	assert.Equal(t, "cafe", LettersOnly("Café"))
	assert.Equal(t, "dont", LettersOnly("don't"))
	assert.Equal(t, "любов", LettersOnly("Любов"))
	assert.Equal(t, "", LettersOnly("1234!"))
}

func TestCleanToken(t *testing.T) {
	assert.Equal(t, "don't", CleanToken(`"Don't,`))
	assert.Equal(t, "well-known", CleanToken("(well-known)"))
}

func TestDeriveSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"the", 1},
		{"world", 1},
		{"fire", 1},
		{"loved", 1},
		{"night", 1},
		{"queen", 1},
		{"dreams", 1},
		{"hello", 2},
		{"money", 2},
		{"table", 2},
		{"hated", 2},
		{"roses", 2},
		{"banana", 3},
		{"beautiful", 3},
		{"everything", 4},
		{"hmm", 1},
		{"my", 1},
		{"bye", 1},
		{"eye", 1},
		{"eyes", 1},
		{"dyed", 1},
		{"goodbye", 2},
		{"player", 2},
		{"stayed", 1},
		{"yes", 1},
		{"любов", 2},
		{"нация", 3},
		{"хвърлям", 2},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			p := Pronunciation{Phonemes: Derive(tt.word)}
			assert.Equal(t, tt.want, p.Syllables(), "phonemes: %s", p)
		})
	}
}

func TestSyllablesAtLeastOneForAnyWord(t *testing.T) {
	latin := []rune("abcdefghijklmnopqrstuvwxyz")
	cyrillic := []rune("абвгдежзийклмнопрстуфхцчшщъьюяыэёієїґ")
	rng := rand.New(rand.NewSource(42))
	r := NewResolver(nil)
	for i := 0; i < 2000; i++ {
		alphabet := latin
		if i%4 == 0 {
			alphabet = cyrillic
		}
		word := make([]rune, 1+rng.Intn(12))
		for j := range word {
			word[j] = alphabet[rng.Intn(len(alphabet))]
		}
		w := string(word)
		p := Pronunciation{Phonemes: Derive(w)}
		if p.Syllables() < 1 {
			t.Fatalf("Derive(%q) has no syllable: %s", w, p)
		}
		if n := r.Syllables(w); n < 1 {
			t.Fatalf("Syllables(%q) = %d", w, n)
		}
	}
}

func TestDeriveStress(t *testing.T) {
	ph := Derive("banana")
	var stresses []Stress
	for _, p := range ph {
		if p.IsVowel() {
			stresses = append(stresses, p.Stress)
		}
	}
	assert.Equal(t, []Stress{StressNone, StressPrimary, StressNone}, stresses)
}

func TestDeriveCyrillicDevoicing(t *testing.T) {
	assert.Equal(t, RhymeKey("AA K"), KeyOf(Derive("враг")))
	assert.Equal(t, KeyOf(Derive("враг")), KeyOf(Derive("мрак")))
}

func TestRhymeKeys(t *testing.T) {
	r := NewResolver(nil)
	tests := []struct {
		a, b  string
		equal bool
	}{
		{"cat", "hat", true},
		{"cat", "cut", false},
		{"любов", "готов", true},
		{"баница", "улица", true},
		{"пари", "вари", true},
		{"пари", "море", false},
		{"нощ", "мощ", true},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			ka, kb := r.Key(tt.a), r.Key(tt.b)
			require.NotEmpty(t, ka)
			if tt.equal {
				assert.Equal(t, ka, kb)
			} else {
				assert.NotEqual(t, ka, kb)
			}
		})
	}
	assert.Equal(t, RhymeKey("AE T"), r.Key("cat"))
}

func TestFinalYeRhymesWithLongI(t *testing.T) {
	r := NewResolver(nil)
	for _, w := range []string{"my", "bye", "eye", "goodbye", "why", "rye"} {
		assert.Equal(t, RhymeKey("AY"), r.Key(w), w)
	}
	assert.Equal(t, RhymeKey("AY D"), r.Key("dyed"))

	ph := Derive("goodbye")
	require.NotEmpty(t, ph)
	last := ph[len(ph)-1]
	assert.Equal(t, "AY", last.Symbol)
	assert.Equal(t, StressPrimary, last.Stress)
}

func TestTailIdempotent(t *testing.T) {
	ph, err := ParseARPAbet("B IH0 K AH1 M IH2 NG")
	require.NoError(t, err)
	once := Tail(ph)
	assert.Equal(t, once, Tail(once))
	assert.Equal(t, RhymeKey("AH M IH NG"), KeyOf(ph))
	assert.Equal(t, StressNone, once[2].Stress)
}

func TestTailWithoutPrimaryUsesLastVowel(t *testing.T) {
	ph, err := ParseARPAbet("AH0 B AH0 T")
	require.NoError(t, err)
	assert.Equal(t, RhymeKey("AH T"), KeyOf(ph))
	assert.Nil(t, Tail([]Phoneme{{Symbol: "T"}}))
	assert.Equal(t, RhymeKey(""), KeyOf(nil))
}

func TestResolverPrefersLexicon(t *testing.T) {
	r := NewResolver(mapLexicon{"cat": "K AE1 T", "well": "W EH1 L"})

	p := r.Resolve("Cat!")
	assert.Equal(t, SourceDictionary, p.Source)
	assert.Equal(t, "cat", p.Word)
	assert.Equal(t, "K AE1 T", p.String())

	p = r.Resolve("dog")
	assert.Equal(t, SourceHeuristic, p.Source)
	assert.Equal(t, 1, p.Syllables())

	p = r.Resolve("well-known")
	assert.Equal(t, SourceHeuristic, p.Source)
	assert.Equal(t, 2, p.Syllables())
}

func TestResolverNonAlphabetic(t *testing.T) {
	r := NewResolver(nil)
	p := r.Resolve("2024")
	assert.True(t, p.Empty())
	assert.Equal(t, SourceNone, p.Source)
	assert.Equal(t, 0, r.Syllables("..."))
	assert.Equal(t, RhymeKey(""), r.Key("42"))
}

func TestResolverCache(t *testing.T) {
	r := NewResolver(nil)
	first := r.Resolve("banana")
	second := r.Resolve("BANANA,")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.CacheLen())
}

func TestResolverConcurrent(t *testing.T) {
	r := NewResolver(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Resolve(fmt.Sprintf("word%c", 'a'+rune((i+j)%26)))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, r.CacheLen())
}

func TestBreakdown(t *testing.T) {
	r := NewResolver(nil)
	bd := r.Breakdown("Hello 42 world")
	assert.Equal(t, 3, bd.Total)
	assert.Equal(t, []WordSyllables{{"hello", 2}, {"world", 1}}, bd.Words)
	assert.Equal(t, 7, r.LineSyllables("Имам пари да хвърлям"))
	assert.Equal(t, 0, r.LineSyllables(""))
}
