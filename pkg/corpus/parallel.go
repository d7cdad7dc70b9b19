package corpus

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/japaniel/lyricist/pkg/lyrics"
)

// Document is raw lyric text tagged with its source.
type Document struct {
	Source string
	Text   string
}

// IngestAll segments and prepares documents in parallel, then applies them
// in input order so the result is the same as ingesting them one by one.
// Nothing is applied if ctx is cancelled before preparation finishes.
func (c *Corpus) IngestAll(ctx context.Context, docs []Document, opts ...IngestOption) ([]IngestResult, error) {
	batches := make([]Batch, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			batches[i] = c.Prepare(lyrics.Segment(d.Text), d.Source, opts...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]IngestResult, len(batches))
	for i, b := range batches {
		results[i] = c.Apply(b)
	}
	return results, nil
}

// AnalyzeAll runs AnalyzeStyle over each text concurrently. Reports come
// back in input order.
func (c *Corpus) AnalyzeAll(ctx context.Context, texts []string) ([]StyleReport, error) {
	reports := make([]StyleReport, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = c.AnalyzeStyle(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// RhymeSeed restores one persisted rhyme index entry.
type RhymeSeed struct {
	Word   string
	Source string
	Count  int
}

// Snapshot is persisted corpus state.
type Snapshot struct {
	Vocabulary map[string]int
	Themes     map[string]int
	RhymeWords []RhymeSeed
	Lines      []Line
}

// Restore merges a snapshot into the corpus, adding to existing counts.
// Line syllables and rhyme keys are recomputed with the corpus resolver, so
// lines stored under an older pronunciation source rhyme like the index.
func (c *Corpus) Restore(s Snapshot) {
	lines := make([]Line, len(s.Lines))
	for i, l := range s.Lines {
		l.Syllables = c.resolver.LineSyllables(l.Text)
		l.RhymeKey = c.resolver.Key(lyrics.LastWord(l.Text))
		lines[i] = l
	}

	c.mu.Lock()
	for w, n := range s.Vocabulary {
		c.vocab[w] += n
	}
	for th, n := range s.Themes {
		c.themeCounts[th] += n
	}
	c.lines = append(c.lines, lines...)
	for _, seed := range s.RhymeWords {
		c.index.InsertN(seed.Word, seed.Source, seed.Count)
	}
	c.mu.Unlock()
	c.logger.Info("corpus restored",
		"words", len(s.Vocabulary),
		"lines", len(s.Lines),
		"rhyme_words", len(s.RhymeWords),
	)
}
