// Package corpus accumulates analysed lyrics: vocabulary counts, theme
// tallies, a rhyme index and the lines themselves.
//
// Ingestion is split in two. Prepare does all the phonetic work and touches
// no corpus state, so many songs can be prepared in parallel. Apply merges a
// prepared batch under the write lock; readers never see half a batch.
package corpus

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/japaniel/lyricist/pkg/lyrics"
	"github.com/japaniel/lyricist/pkg/phonetic"
	"github.com/japaniel/lyricist/pkg/rhyme"
)

// Line is one analysed lyric line.
type Line struct {
	Text      string             `json:"text"`
	Words     []string           `json:"words"`
	Source    string             `json:"source,omitempty"`
	Section   lyrics.SectionType `json:"section"`
	Ordinal   int                `json:"ordinal"`
	Position  int                `json:"position"`
	Syllables int                `json:"syllables"`
	RhymeKey  phonetic.RhymeKey  `json:"rhyme_key,omitempty"`
	Themes    []string           `json:"themes,omitempty"`
}

// Batch is the output of Prepare, ready to be applied.
type Batch struct {
	Source   string
	Sections []lyrics.Section
	Lines    []Line
}

// IngestResult summarises what one Apply added.
type IngestResult struct {
	Source         string                     `json:"source,omitempty"`
	LinesAdded     int                        `json:"lines_added"`
	WordsAdded     int                        `json:"words_added"`
	ThemesDetected map[string]int             `json:"themes_detected"`
	SectionsFound  map[lyrics.SectionType]int `json:"sections_found"`
}

// Corpus is safe for concurrent use.
type Corpus struct {
	resolver *phonetic.Resolver
	index    *rhyme.Index
	themes   *Themes
	logger   *slog.Logger

	mu          sync.RWMutex
	vocab       map[string]int
	themeCounts map[string]int
	lines       []Line
}

// Option configures a Corpus.
type Option func(*options)

type options struct {
	themes   *Themes
	logger   *slog.Logger
	indexOps []rhyme.IndexOption
}

// WithThemes replaces the default theme table.
func WithThemes(t *Themes) Option {
	return func(o *options) { o.themes = t }
}

// WithLogger sets the corpus logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIndexOptions passes options through to the rhyme index.
func WithIndexOptions(opts ...rhyme.IndexOption) Option {
	return func(o *options) { o.indexOps = append(o.indexOps, opts...) }
}

// New creates an empty corpus. A nil resolver means heuristic-only
// pronunciation.
func New(r *phonetic.Resolver, opts ...Option) *Corpus {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if r == nil {
		r = phonetic.NewResolver(nil, phonetic.WithLogger(o.logger))
	}
	if o.themes == nil {
		o.themes = DefaultThemes()
	}
	return &Corpus{
		resolver:    r,
		index:       rhyme.NewIndex(r, o.indexOps...),
		themes:      o.themes,
		logger:      o.logger,
		vocab:       make(map[string]int),
		themeCounts: make(map[string]int),
	}
}

// Resolver exposes the pronunciation resolver shared by the corpus.
func (c *Corpus) Resolver() *phonetic.Resolver { return c.resolver }

// Index exposes the rhyme index.
func (c *Corpus) Index() *rhyme.Index { return c.index }

// Themes returns the active theme table.
func (c *Corpus) Themes() *Themes { return c.themes }

// IngestOption adjusts a single ingest call.
type IngestOption func(*ingestConfig)

type ingestConfig struct {
	themes *Themes
}

// WithThemeKeywords matches this call's lines against keywords instead of
// the corpus theme table.
func WithThemeKeywords(keywords map[string][]string) IngestOption {
	return func(c *ingestConfig) { c.themes = NewThemes(keywords) }
}

// Prepare analyses sections without touching corpus state. Each distinct
// section is analysed once no matter how often it repeats in the song.
func (c *Corpus) Prepare(sections []lyrics.Section, source string, opts ...IngestOption) Batch {
	cfg := ingestConfig{themes: c.themes}
	for _, opt := range opts {
		opt(&cfg)
	}
	b := Batch{Source: source, Sections: sections}
	for _, s := range sections {
		for i, text := range s.Lines {
			words := lyrics.Words(text)
			b.Lines = append(b.Lines, Line{
				Text:      text,
				Words:     words,
				Source:    source,
				Section:   s.Type,
				Ordinal:   s.Ordinal,
				Position:  i + 1,
				Syllables: c.resolver.LineSyllables(text),
				RhymeKey:  c.resolver.Key(lyrics.LastWord(text)),
				Themes:    cfg.themes.Match(words),
			})
		}
	}
	return b
}

// Apply merges a prepared batch. Vocabulary counts every word occurrence,
// the rhyme index counts each distinct word once per line and theme
// tallies count each matching line once.
func (c *Corpus) Apply(b Batch) IngestResult {
	res := IngestResult{
		Source:         b.Source,
		ThemesDetected: make(map[string]int),
		SectionsFound:  make(map[lyrics.SectionType]int),
	}
	for _, s := range b.Sections {
		res.SectionsFound[s.Type]++
	}

	c.mu.Lock()
	for _, line := range b.Lines {
		for _, w := range line.Words {
			if c.vocab[w] == 0 {
				res.WordsAdded++
			}
			c.vocab[w]++
		}
		c.index.InsertAll(line.Words, b.Source)
		for _, th := range line.Themes {
			c.themeCounts[th]++
			res.ThemesDetected[th]++
		}
		c.lines = append(c.lines, line)
	}
	c.mu.Unlock()

	res.LinesAdded = len(b.Lines)
	c.logger.Debug("corpus batch applied",
		"source", b.Source,
		"lines", res.LinesAdded,
		"new_words", res.WordsAdded,
	)
	return res
}

// Ingest prepares and applies sections in one step.
func (c *Corpus) Ingest(sections []lyrics.Section, source string, opts ...IngestOption) IngestResult {
	return c.Apply(c.Prepare(sections, source, opts...))
}

// IngestText segments raw lyrics and ingests the result.
func (c *Corpus) IngestText(raw, source string, opts ...IngestOption) IngestResult {
	return c.Ingest(lyrics.Segment(raw), source, opts...)
}

// Syllables breaks a line down into per-word syllable counts.
func (c *Corpus) Syllables(line string) phonetic.Breakdown {
	return c.resolver.Breakdown(line)
}

// Rhymes grades every indexed word against word.
func (c *Corpus) Rhymes(word string) rhyme.Matches {
	return c.index.Query(word)
}

// Explode partitions the indexed vocabulary around word.
func (c *Corpus) Explode(word string) rhyme.Explosion {
	return c.index.Explode(word)
}

// RhymeGroups returns up to limit groups, most frequent first. A limit of
// zero or less returns every group.
func (c *Corpus) RhymeGroups(limit int) []rhyme.Group {
	groups := c.index.Groups()
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// Vocabulary returns up to limit words, most frequent first.
func (c *Corpus) Vocabulary(limit int) []rhyme.WordCount {
	c.mu.RLock()
	out := make([]rhyme.WordCount, 0, len(c.vocab))
	for w, n := range c.vocab {
		out = append(out, rhyme.WordCount{Word: w, Count: n})
	}
	c.mu.RUnlock()
	sortCounts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ThemeCounts returns a copy of the per-theme line tallies.
func (c *Corpus) ThemeCounts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.themeCounts))
	for k, v := range c.themeCounts {
		out[k] = v
	}
	return out
}

// LineCount is the number of stored lines.
func (c *Corpus) LineCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}

func sortCounts(out []rhyme.WordCount) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
}
