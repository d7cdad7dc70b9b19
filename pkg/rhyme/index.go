package rhyme

import (
	"sort"
	"sync"

	"github.com/antzucaro/matchr"

	"github.com/japaniel/lyricist/pkg/phonetic"
)

// DefaultExamplesPerSource caps the example words a group keeps per source.
const DefaultExamplesPerSource = 5

// WordCount is a word with its observed frequency.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Group is a snapshot of all indexed words sharing one rhyme key.
type Group struct {
	Key       phonetic.RhymeKey   `json:"key"`
	Tail      []phonetic.Phoneme  `json:"-"`
	Words     []WordCount         `json:"words"`
	Endings   []string            `json:"endings"`
	Frequency int                 `json:"frequency"`
	Examples  map[string][]string `json:"examples,omitempty"`
}

// Matches lists indexed words rhyming with a query, per tier.
type Matches struct {
	Perfect []string `json:"perfect"`
	Near    []string `json:"near"`
	Slant   []string `json:"slant"`
}

// Explosion partitions the indexed words related to a query word. Each word
// lands in at most one bucket; Rhymes wins over Combos, Combos over
// StartsWith and StartsWith over EndsWith.
type Explosion struct {
	StartsWith []string `json:"starts_with"`
	EndsWith   []string `json:"ends_with"`
	Rhymes     []string `json:"rhymes"`
	Combos     []string `json:"combos"`
}

type group struct {
	key      phonetic.RhymeKey
	tail     []phonetic.Phoneme
	words    map[string]int
	freq     int
	examples map[string][]string
}

type entry struct {
	key   phonetic.RhymeKey
	freq  int
	onset string
	rime  string
	meta  string
}

// Index groups words by rhyme key and tracks how often each was seen.
// All methods are safe for concurrent use; readers never observe a
// partially applied insert.
type Index struct {
	resolver          *phonetic.Resolver
	examplesPerSource int

	mu     sync.RWMutex
	groups map[phonetic.RhymeKey]*group
	words  map[string]*entry
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithExamplesPerSource sets how many example words are kept per source.
func WithExamplesPerSource(n int) IndexOption {
	return func(ix *Index) {
		if n >= 0 {
			ix.examplesPerSource = n
		}
	}
}

// NewIndex creates an empty index resolving words with r.
func NewIndex(r *phonetic.Resolver, opts ...IndexOption) *Index {
	ix := &Index{
		resolver:          r,
		examplesPerSource: DefaultExamplesPerSource,
		groups:            make(map[phonetic.RhymeKey]*group),
		words:             make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

type prepared struct {
	word  string
	tail  []phonetic.Phoneme
	entry entry
}

func (ix *Index) prepare(word string) (prepared, bool) {
	p := ix.resolver.Resolve(word)
	tail := phonetic.Tail(p.Phonemes)
	if len(tail) == 0 {
		return prepared{}, false
	}
	var meta string
	if letters := phonetic.LettersOnly(p.Word); !phonetic.HasCyrillic(letters) {
		meta, _ = matchr.DoubleMetaphone(letters)
	}
	return prepared{
		word: p.Word,
		tail: tail,
		entry: entry{
			key:   phonetic.KeyOf(p.Phonemes),
			onset: phonetic.Onset(p.Word),
			rime:  phonetic.Rime(p.Word),
			meta:  meta,
		},
	}, true
}

// Insert records one occurrence of word. It reports false when the word has
// no vowel and therefore no rhyme key.
func (ix *Index) Insert(word, source string) bool {
	return ix.InsertN(word, source, 1)
}

// InsertN records n occurrences of word at once.
func (ix *Index) InsertN(word, source string, n int) bool {
	if n <= 0 {
		return false
	}
	pw, ok := ix.prepare(word)
	if !ok {
		return false
	}
	ix.mu.Lock()
	ix.insertLocked(pw, source, n)
	ix.mu.Unlock()
	return true
}

// InsertAll records each distinct word of one line once, under a single
// lock acquisition. It returns the number of words indexed.
func (ix *Index) InsertAll(words []string, source string) int {
	seen := make(map[string]struct{}, len(words))
	batch := make([]prepared, 0, len(words))
	for _, w := range words {
		pw, ok := ix.prepare(w)
		if !ok {
			continue
		}
		if _, dup := seen[pw.word]; dup {
			continue
		}
		seen[pw.word] = struct{}{}
		batch = append(batch, pw)
	}
	if len(batch) == 0 {
		return 0
	}
	ix.mu.Lock()
	for _, pw := range batch {
		ix.insertLocked(pw, source, 1)
	}
	ix.mu.Unlock()
	return len(batch)
}

func (ix *Index) insertLocked(pw prepared, source string, n int) {
	g, ok := ix.groups[pw.entry.key]
	if !ok {
		g = &group{
			key:      pw.entry.key,
			tail:     pw.tail,
			words:    make(map[string]int),
			examples: make(map[string][]string),
		}
		ix.groups[g.key] = g
	}
	g.words[pw.word] += n
	g.freq += n

	if source != "" && ix.examplesPerSource > 0 {
		ex := g.examples[source]
		if len(ex) < ix.examplesPerSource && !contains(ex, pw.word) {
			g.examples[source] = append(ex, pw.word)
		}
	}

	e, ok := ix.words[pw.word]
	if !ok {
		cp := pw.entry
		e = &cp
		ix.words[pw.word] = e
	}
	e.freq += n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Len is the number of distinct indexed words.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.words)
}

// Frequency returns how often word was inserted.
func (ix *Index) Frequency(word string) int {
	w := phonetic.CleanToken(word)
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if e, ok := ix.words[w]; ok {
		return e.freq
	}
	return 0
}

// LookupByKey returns a snapshot of the group stored under key.
func (ix *Index) LookupByKey(key phonetic.RhymeKey) (Group, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	g, ok := ix.groups[key]
	if !ok {
		return Group{}, false
	}
	return g.snapshot(), true
}

func (g *group) snapshot() Group {
	out := Group{
		Key:       g.key,
		Tail:      append([]phonetic.Phoneme(nil), g.tail...),
		Words:     sortedCounts(g.words),
		Frequency: g.freq,
		Examples:  make(map[string][]string, len(g.examples)),
	}
	endings := make(map[string]struct{})
	for w := range g.words {
		endings[phonetic.Rime(w)] = struct{}{}
	}
	out.Endings = make([]string, 0, len(endings))
	for e := range endings {
		out.Endings = append(out.Endings, e)
	}
	sort.Strings(out.Endings)
	for src, ex := range g.examples {
		out.Examples[src] = append([]string(nil), ex...)
	}
	return out
}

// Groups returns every group, most frequent first, ties by key.
func (ix *Index) Groups() []Group {
	ix.mu.RLock()
	out := make([]Group, 0, len(ix.groups))
	for _, g := range ix.groups {
		out = append(out, g.snapshot())
	}
	ix.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Words returns all indexed words with their frequency, most frequent first.
func (ix *Index) Words() []WordCount {
	ix.mu.RLock()
	counts := make(map[string]int, len(ix.words))
	for w, e := range ix.words {
		counts[w] = e.freq
	}
	ix.mu.RUnlock()
	return sortedCounts(counts)
}

// Query grades every indexed word against word. The query word itself is
// excluded and each list is ordered by frequency, then alphabetically.
func (ix *Index) Query(word string) Matches {
	m := Matches{Perfect: []string{}, Near: []string{}, Slant: []string{}}
	q, ok := ix.prepare(word)
	if !ok {
		return m
	}
	perfect, near, slant := map[string]int{}, map[string]int{}, map[string]int{}

	ix.mu.RLock()
	for _, g := range ix.groups {
		var bucket map[string]int
		switch ClassifyTails(q.tail, g.tail) {
		case Perfect:
			bucket = perfect
		case Near:
			bucket = near
		case Slant:
			bucket = slant
		default:
			continue
		}
		for w, n := range g.words {
			if w != q.word {
				bucket[w] = n
			}
		}
	}
	ix.mu.RUnlock()

	m.Perfect = words(sortedCounts(perfect))
	m.Near = words(sortedCounts(near))
	m.Slant = words(sortedCounts(slant))
	return m
}

// Explode partitions the indexed vocabulary around word: true rhymes
// (perfect or near), words that both start and end like it, words that only
// start like it and words that only end like it. Starting alike means the
// same leading letter cluster or the same first two Double Metaphone
// symbols; ending alike means the same rime spelling.
func (ix *Index) Explode(word string) Explosion {
	ex := Explosion{StartsWith: []string{}, EndsWith: []string{}, Rhymes: []string{}, Combos: []string{}}
	q, ok := ix.prepare(word)
	if !ok {
		return ex
	}
	starts, ends, rhymes, combos := map[string]int{}, map[string]int{}, map[string]int{}, map[string]int{}

	ix.mu.RLock()
	tiers := make(map[phonetic.RhymeKey]Tier, len(ix.groups))
	for k, g := range ix.groups {
		tiers[k] = ClassifyTails(q.tail, g.tail)
	}
	for w, e := range ix.words {
		if w == q.word {
			continue
		}
		startAlike := startsAlike(q.entry, *e)
		endAlike := q.entry.rime != "" && q.entry.rime == e.rime
		switch t := tiers[e.key]; {
		case t == Perfect || t == Near:
			rhymes[w] = e.freq
		case startAlike && endAlike:
			combos[w] = e.freq
		case startAlike:
			starts[w] = e.freq
		case endAlike:
			ends[w] = e.freq
		}
	}
	ix.mu.RUnlock()

	ex.StartsWith = words(sortedCounts(starts))
	ex.EndsWith = words(sortedCounts(ends))
	ex.Rhymes = words(sortedCounts(rhymes))
	ex.Combos = words(sortedCounts(combos))
	return ex
}

func startsAlike(a, b entry) bool {
	if a.onset != "" && a.onset == b.onset {
		return true
	}
	return len(a.meta) >= 2 && len(b.meta) >= 2 && a.meta[:2] == b.meta[:2]
}

func sortedCounts(m map[string]int) []WordCount {
	out := make([]WordCount, 0, len(m))
	for w, n := range m {
		out = append(out, WordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

func words(counts []WordCount) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Word
	}
	return out
}
