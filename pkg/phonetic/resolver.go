package phonetic

import (
	"log/slog"
	"strings"
	"sync"
)

// Lexicon is a pronunciation dictionary keyed by lowercase word.
type Lexicon interface {
	Lookup(word string) ([]Phoneme, bool)
}

// Resolver maps tokens to pronunciations. It consults the Lexicon first and
// falls back to Derive. Results are memoised per cleaned token; a Resolver is
// safe for concurrent use.
type Resolver struct {
	lex    Lexicon
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]Pronunciation
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for lookup diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver. lex may be nil, in which case every word is
// resolved heuristically.
func NewResolver(lex Lexicon, opts ...Option) *Resolver {
	r := &Resolver{
		lex:    lex,
		logger: slog.Default(),
		cache:  make(map[string]Pronunciation),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the pronunciation of a single token. Tokens without any
// letter resolve to an empty pronunciation with SourceNone.
func (r *Resolver) Resolve(token string) Pronunciation {
	clean := CleanToken(token)
	if LettersOnly(clean) == "" {
		return Pronunciation{Word: clean}
	}

	r.mu.RLock()
	p, ok := r.cache[clean]
	r.mu.RUnlock()
	if ok {
		return p
	}

	p = r.resolve(clean)

	r.mu.Lock()
	if cached, ok := r.cache[clean]; ok {
		p = cached
	} else {
		r.cache[clean] = p
	}
	r.mu.Unlock()
	return p
}

func (r *Resolver) resolve(clean string) Pronunciation {
	if ph, ok := r.lookup(clean); ok {
		return Pronunciation{Word: clean, Phonemes: ph, Source: SourceDictionary}
	}

	parts := SplitCompound(clean)
	if len(parts) <= 1 {
		if r.lex != nil {
			r.logger.Debug("word not in dictionary, deriving from spelling", "word", clean)
		}
		return Pronunciation{Word: clean, Phonemes: Derive(clean), Source: SourceHeuristic}
	}

	var ph []Phoneme
	src := SourceDictionary
	for _, part := range parts {
		if dict, ok := r.lookup(part); ok {
			ph = append(ph, dict...)
			continue
		}
		src = SourceHeuristic
		ph = append(ph, Derive(part)...)
	}
	return Pronunciation{Word: clean, Phonemes: ph, Source: src}
}

func (r *Resolver) lookup(word string) ([]Phoneme, bool) {
	if r.lex == nil {
		return nil, false
	}
	if ph, ok := r.lex.Lookup(word); ok && len(ph) > 0 {
		return ph, true
	}
	if letters := LettersOnly(word); letters != word && letters != "" {
		if ph, ok := r.lex.Lookup(letters); ok && len(ph) > 0 {
			return ph, true
		}
	}
	return nil, false
}

// Syllables counts the vowel nuclei of a single token.
func (r *Resolver) Syllables(token string) int {
	return r.Resolve(token).Syllables()
}

// Key returns the rhyme key of a token, empty when it has no vowel.
func (r *Resolver) Key(token string) RhymeKey {
	return KeyOf(r.Resolve(token).Phonemes)
}

// CacheLen reports the number of memoised tokens.
func (r *Resolver) CacheLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}


// WordSyllables is one entry of a Breakdown.
type WordSyllables struct {
	Word      string `json:"word"`
	Syllables int    `json:"syllables"`
}

// Breakdown is the per-word syllable count of a line.
type Breakdown struct {
	Total int             `json:"total"`
	Words []WordSyllables `json:"words"`
}

// Breakdown splits line on whitespace and counts each token. Tokens without
// letters contribute nothing and are omitted.
func (r *Resolver) Breakdown(line string) Breakdown {
	bd := Breakdown{Words: []WordSyllables{}}
	for _, tok := range strings.Fields(line) {
		p := r.Resolve(tok)
		n := p.Syllables()
		if n == 0 {
			continue
		}
		bd.Words = append(bd.Words, WordSyllables{Word: p.Word, Syllables: n})
		bd.Total += n
	}
	return bd
}

// LineSyllables is the total of Breakdown(line).
func (r *Resolver) LineSyllables(line string) int {
	return r.Breakdown(line).Total
}
