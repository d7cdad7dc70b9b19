// Package ingest loads many songs into a corpus. Songs are segmented and
// analysed on a worker pool, applied to the corpus in input order and,
// when a database is configured, persisted in batches with a per-source
// checkpoint so an interrupted import can resume.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/japaniel/lyricist/pkg/corpus"
	"github.com/japaniel/lyricist/pkg/db"
	"github.com/japaniel/lyricist/pkg/lyrics"
	"github.com/japaniel/lyricist/pkg/phonetic"
)

// Song is one lyric document to ingest.
type Song struct {
	ID     string
	Artist string
	Title  string
	URL    string
	Text   string
}

// NewSong builds a Song with a stable ID: the same URL, or the same artist
// and title when there is no URL, always map to the same ID. Songs with no
// identifying fields get a random ID.
func NewSong(artist, title, url, text string) Song {
	return Song{ID: SongID(artist, title, url), Artist: artist, Title: title, URL: url, Text: text}
}

// SongID derives the source identifier used for resume checks.
func SongID(artist, title, url string) string {
	key := strings.TrimSpace(url)
	if key == "" {
		a, t := strings.TrimSpace(artist), strings.TrimSpace(title)
		if a == "" && t == "" {
			return uuid.New().String()
		}
		key = "song:" + strings.ToLower(a) + "\x00" + strings.ToLower(t)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Name is the label the corpus records as the line source.
func (s Song) Name() string {
	switch {
	case s.Artist != "" && s.Title != "":
		return s.Artist + " - " + s.Title
	case s.Title != "":
		return s.Title
	case s.URL != "":
		return s.URL
	default:
		return s.ID
	}
}

// Summary totals one Ingest call.
type Summary struct {
	Songs      int            `json:"songs"`
	Skipped    int            `json:"skipped"`
	Lines      int            `json:"lines"`
	WordsAdded int            `json:"words_added"`
	Themes     map[string]int `json:"themes"`
}

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Ingester feeds songs into a corpus and, optionally, a database.
type Ingester struct {
	DB     *sql.DB
	Corpus *corpus.Corpus

	Workers       int
	BatchSize     int
	FlushInterval time.Duration

	// Logger is used for progress and resume messages. nil means no logging.
	Logger  *slog.Logger
	Metrics *Metrics
	// OnProgress is called after each song is applied.
	OnProgress func(done, total int)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates an Ingester. conn may be nil for in-memory only use.
func NewIngester(conn *sql.DB, c *corpus.Corpus) *Ingester {
	return &Ingester{
		DB:            conn,
		Corpus:        c,
		Workers:       4,
		BatchSize:     50,
		FlushInterval: 100 * time.Millisecond,
	}
}

// pending is a song that passed the resume check.
type pending struct {
	seq      int
	song     Song
	sourceID int64
}

// prepared is the worker output for one song.
type prepared struct {
	seq   int
	item  pending
	batch corpus.Batch
}

// Ingest processes songs concurrently and applies them in order. Songs whose
// source is already marked complete in the database are skipped. On error
// or cancellation the songs applied so far stay applied and persisted.
func (ig *Ingester) Ingest(ctx context.Context, songs []Song) (Summary, error) {
	sum := Summary{Themes: make(map[string]int)}
	if ig.Corpus == nil {
		return sum, errors.New("ingest: no corpus configured")
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	logger := ig.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := ig.Workers
	if workers <= 0 {
		workers = 1
	}

	todo, skipped, err := ig.resumeCheck(songs, logger)
	if err != nil {
		return sum, err
	}
	sum.Skipped = skipped
	ig.countSongs(ctx, "skipped", skipped)
	if len(todo) == 0 {
		return sum, nil
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	resultCh := make(chan prepared, workers*2)
	doneCh := make(chan error, 1)

	var bw *BatchWriter
	if ig.DB != nil {
		bw = NewBatchWriter(ig.DB, ig.BatchSize, ig.FlushInterval)
		bw.Metrics = ig.Metrics
		bw.Logger = logger
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wp.Start(ctx)

	// Consumer: reorder results and apply them one at a time.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]prepared)
		next := 0
		for res := range resultCh {
			buffer[res.seq] = res
			for {
				item, ok := buffer[next]
				if !ok {
					break
				}
				delete(buffer, next)
				if err := ig.apply(ctx, item, bw, &sum); err != nil {
					cancel()
					doneCh <- err
					// Drain so producers never block on a full channel.
					for range resultCh {
					}
					return
				}
				next++
				if ig.OnProgress != nil {
					ig.OnProgress(next, len(todo))
				}
			}
		}
		if next < len(todo) {
			doneCh <- ctx.Err()
		}
	}()

	var submitErr error
Loop:
	for i, p := range todo {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}
		seq, item := i, p
		job := func(ctx context.Context) error {
			start := time.Now()
			sections := lyrics.Segment(lyrics.StripScrapeNoise(item.song.Text))
			b := ig.Corpus.Prepare(sections, item.song.Name())
			if ig.Metrics != nil {
				ig.Metrics.SongDuration.Record(ctx, time.Since(start).Seconds())
			}
			select {
			case resultCh <- prepared{seq: seq, item: item, batch: b}:
			case <-ctx.Done():
			}
			return nil
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, ctx.Err()) || err == ErrPoolClosed {
				break Loop
			}
			submitErr = fmt.Errorf("ingest: submit song %q: %w", item.song.Name(), err)
			cancel()
			break Loop
		}
	}

	// All jobs have returned once Close does, so nothing sends after this.
	wp.Close()
	close(resultCh)
	consumerErr := <-doneCh

	if bw != nil {
		if err := bw.Close(); err != nil && consumerErr == nil {
			consumerErr = err
		}
	}
	if submitErr != nil {
		consumerErr = submitErr
	}

	logger.Info("ingest finished",
		"songs", sum.Songs,
		"skipped", sum.Skipped,
		"lines", sum.Lines,
		"new_words", sum.WordsAdded,
	)
	return sum, consumerErr
}

// resumeCheck registers every song as a source and drops completed ones
// and repeats within the call.
func (ig *Ingester) resumeCheck(songs []Song, logger *slog.Logger) ([]pending, int, error) {
	todo := make([]pending, 0, len(songs))
	skipped := 0
	seen := make(map[string]bool, len(songs))
	for _, s := range songs {
		if s.ID == "" {
			s.ID = SongID(s.Artist, s.Title, s.URL)
		}
		if seen[s.ID] {
			logger.Info("skipping duplicate song", "source", s.Name())
			skipped++
			continue
		}
		seen[s.ID] = true
		p := pending{song: s}
		if ig.DB != nil {
			id, err := db.CreateOrGetSource(ig.DB, s.ID, s.Name(), s.Artist, s.Title, s.URL)
			if err != nil {
				return nil, 0, fmt.Errorf("ingest: register source %q: %w", s.Name(), err)
			}
			_, done, err := db.GetSourceProgress(ig.DB, id)
			if err != nil {
				logger.Warn("failed to read source progress", "source", s.Name(), "error", err)
			}
			if done {
				logger.Info("skipping already ingested source", "source", s.Name())
				skipped++
				continue
			}
			p.sourceID = id
		}
		p.seq = len(todo)
		todo = append(todo, p)
	}
	return todo, skipped, nil
}

// apply merges one prepared song into the corpus and queues its writes.
func (ig *Ingester) apply(ctx context.Context, p prepared, bw *BatchWriter, sum *Summary) error {
	res := ig.Corpus.Apply(p.batch)

	sum.Songs++
	sum.Lines += res.LinesAdded
	sum.WordsAdded += res.WordsAdded
	for th, n := range res.ThemesDetected {
		sum.Themes[th] += n
	}

	if ig.Metrics != nil {
		ig.Metrics.Lines.Add(ctx, int64(res.LinesAdded))
		ig.Metrics.NewWords.Add(ctx, int64(res.WordsAdded))
	}
	ig.countSongs(ctx, "ingested", 1)

	if bw == nil {
		return nil
	}
	return bw.Submit(ig.persist(p))
}

func (ig *Ingester) countSongs(ctx context.Context, status string, n int) {
	if ig.Metrics == nil || n == 0 {
		return
	}
	ig.Metrics.Songs.Add(ctx, int64(n), metric.WithAttributes(attribute.String("status", status)))
}

// persist builds the transaction body that stores one song. Vocabulary
// counts every occurrence; rhyme words count once per line, matching the
// in-memory index.
func (ig *Ingester) persist(p prepared) WriteFunc {
	resolver := ig.Corpus.Resolver()
	vocab := make(map[string]int)
	themes := make(map[string]int)
	rhymes := make(map[string]*db.RhymeWord)
	var order []string

	for _, line := range p.batch.Lines {
		seen := make(map[string]bool, len(line.Words))
		for _, w := range line.Words {
			vocab[w]++
			if seen[w] {
				continue
			}
			seen[w] = true
			if rw, ok := rhymes[w]; ok {
				rw.Frequency++
				continue
			}
			pr := resolver.Resolve(w)
			key := phonetic.KeyOf(pr.Phonemes)
			if key == "" {
				continue
			}
			rhymes[w] = &db.RhymeWord{
				Word:       pr.Word,
				Source:     p.batch.Source,
				RhymeKey:   string(key),
				Syllables:  pr.Syllables(),
				PronSource: pr.Source.String(),
				Frequency:  1,
			}
			order = append(order, w)
		}
		for _, th := range line.Themes {
			themes[th]++
		}
	}

	sourceID := p.item.sourceID
	lines := p.batch.Lines
	return func(ctx context.Context, tx *sql.Tx) error {
		for i, l := range lines {
			if err := db.SaveLine(tx, sourceID, i, l); err != nil {
				return fmt.Errorf("save line %d: %w", i, err)
			}
		}
		for w, n := range vocab {
			if err := db.UpsertVocabulary(tx, w, n); err != nil {
				return fmt.Errorf("save vocabulary %q: %w", w, err)
			}
		}
		for _, w := range order {
			if err := db.UpsertRhymeWord(tx, *rhymes[w]); err != nil {
				return fmt.Errorf("save rhyme word %q: %w", w, err)
			}
		}
		for th, n := range themes {
			if err := db.UpsertThemeCount(tx, th, n); err != nil {
				return fmt.Errorf("save theme %q: %w", th, err)
			}
		}
		if err := db.UpdateSourceProgress(tx, sourceID, len(lines), true); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		return nil
	}
}
