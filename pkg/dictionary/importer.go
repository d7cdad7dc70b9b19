package dictionary

import (
	"database/sql"
	"log/slog"

	"github.com/japaniel/lyricist/pkg/db"
	"github.com/japaniel/lyricist/pkg/lyrics"
	"github.com/japaniel/lyricist/pkg/phonetic"
)

// Importer upgrades persisted rhyme words whose pronunciation was guessed
// by the heuristic once a dictionary knows them.
type Importer struct {
	conn   *sql.DB
	dict   *Dictionary
	logger *slog.Logger
}

// NewImporter creates an importer over conn using dict.
func NewImporter(conn *sql.DB, dict *Dictionary, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{conn: conn, dict: dict, logger: logger}
}

// Updates counts the rows changed by ProcessUpdates.
type Updates struct {
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// ProcessUpdates re-keys heuristic rhyme words found in the dictionary,
// then recomputes the rhyme key and syllable count of every stored line so
// line search agrees with the word index.
func (im *Importer) ProcessUpdates() (Updates, error) {
	var res Updates
	n, err := im.updateWords()
	if err != nil {
		return res, err
	}
	res.Words = n
	if res.Lines, err = im.updateLines(); err != nil {
		return res, err
	}
	return res, nil
}

func (im *Importer) updateWords() (int, error) {
	rows, err := db.GetRhymeWordsByPronSource(im.conn, phonetic.SourceHeuristic.String())
	if err != nil {
		return 0, err
	}

	type update struct {
		word      string
		key       string
		syllables int
	}
	var updates []update
	seen := make(map[string]bool)
	for _, rw := range rows {
		if seen[rw.Word] {
			continue
		}
		seen[rw.Word] = true
		ph, ok := im.dict.Lookup(rw.Word)
		if !ok {
			continue
		}
		key := phonetic.KeyOf(ph)
		if key == "" {
			continue
		}
		p := phonetic.Pronunciation{Word: rw.Word, Phonemes: ph, Source: phonetic.SourceDictionary}
		updates = append(updates, update{word: rw.Word, key: string(key), syllables: p.Syllables()})
	}

	updated := 0
	for _, u := range updates {
		if _, err := db.UpdateRhymePronunciation(im.conn, u.word, u.key, u.syllables, phonetic.SourceDictionary.String()); err != nil {
			im.logger.Warn("failed to update rhyme word", "word", u.word, "error", err)
			continue
		}
		updated++
	}
	im.logger.Info("dictionary applied to stored rhyme words", "checked", len(seen), "updated", updated)
	return updated, nil
}

func (im *Importer) updateLines() (int, error) {
	lines, err := db.GetLinePronunciations(im.conn)
	if err != nil {
		return 0, err
	}
	r := phonetic.NewResolver(im.dict, phonetic.WithLogger(im.logger))
	updated := 0
	for _, l := range lines {
		key := string(r.Key(lyrics.LastWord(l.Text)))
		syllables := r.LineSyllables(l.Text)
		if key == l.RhymeKey && syllables == l.Syllables {
			continue
		}
		if err := db.UpdateLinePronunciation(im.conn, l.ID, key, syllables); err != nil {
			im.logger.Warn("failed to update line", "line", l.ID, "error", err)
			continue
		}
		updated++
	}
	im.logger.Info("dictionary applied to stored lines", "checked", len(lines), "updated", updated)
	return updated, nil
}
