package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/lyricist/pkg/corpus"
	"github.com/japaniel/lyricist/pkg/lyrics"
	"github.com/japaniel/lyricist/pkg/phonetic"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("db: not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetSource returns the id of the source with uid, inserting it when
// missing. Concurrent callers with the same uid get the same id.
func CreateOrGetSource(db DBExecutor, uid, name, artist, title, url string) (int64, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return 0, fmt.Errorf("uid must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(`SELECT id FROM sources WHERE uid = ?`, uid).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO sources (uid, name, artist, title, url) VALUES (?, ?, ?, ?, ?)`,
			uid, name, artist, title, url,
		)
		if err != nil {
			// Lost the race to a concurrent insert; select again.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// GetSource loads a source by id.
func GetSource(db DBExecutor, id int64) (Source, error) {
	var (
		s                  Source
		artist, title, url sql.NullString
		addedAt            sql.NullTime
		completed          int
	)
	err := db.QueryRow(
		`SELECT id, uid, name, artist, title, url, added_at, last_processed_line, completed FROM sources WHERE id = ?`, id,
	).Scan(&s.ID, &s.UID, &s.Name, &artist, &title, &url, &addedAt, &s.LastProcessedLine, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("source %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Source{}, err
	}
	s.Artist = artist.String
	s.Title = title.String
	s.URL = url.String
	s.AddedAt = addedAt.Time
	s.Completed = completed != 0
	return s, nil
}

// GetSourceProgress returns how many lines of a source have been stored
// and whether the source finished.
func GetSourceProgress(db DBExecutor, sourceID int64) (int, bool, error) {
	var (
		n         int
		completed int
	)
	err := db.QueryRow(`SELECT last_processed_line, completed FROM sources WHERE id = ?`, sourceID).Scan(&n, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("source %d: %w", sourceID, ErrNotFound)
	}
	if err != nil {
		return 0, false, err
	}
	return n, completed != 0, nil
}

// UpdateSourceProgress records the number of stored lines. completed marks
// the source as fully ingested.
func UpdateSourceProgress(db DBExecutor, sourceID int64, lines int, completed bool) error {
	done := 0
	if completed {
		done = 1
	}
	res, err := db.Exec(`UPDATE sources SET last_processed_line = ?, completed = ? WHERE id = ?`, lines, done, sourceID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source %d: %w", sourceID, ErrNotFound)
	}
	return nil
}

// SaveLine stores line number seq of a source. Saving the same seq twice
// is a no-op.
func SaveLine(db DBExecutor, sourceID int64, seq int, l corpus.Line) error {
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	_, err := db.Exec(`INSERT INTO lines (source_id, seq, text, words, section, ordinal, position, syllables, rhyme_key, themes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_id, seq) DO NOTHING`,
		sourceID, seq, l.Text, strings.Join(l.Words, " "), l.Section.String(),
		l.Ordinal, l.Position, l.Syllables, string(l.RhymeKey), strings.Join(l.Themes, ","))
	return err
}

// UpsertVocabulary adds n to the count of word.
func UpsertVocabulary(db DBExecutor, word string, n int) error {
	if word == "" || n < 1 {
		return fmt.Errorf("invalid vocabulary update %q/%d", word, n)
	}
	_, err := db.Exec(`INSERT INTO vocabulary (word, count) VALUES (?, ?)
	ON CONFLICT(word) DO UPDATE SET count = vocabulary.count + excluded.count`, word, n)
	return err
}

// UpsertThemeCount adds n to the tally of theme.
func UpsertThemeCount(db DBExecutor, theme string, n int) error {
	if theme == "" || n < 1 {
		return fmt.Errorf("invalid theme update %q/%d", theme, n)
	}
	_, err := db.Exec(`INSERT INTO theme_counts (theme, count) VALUES (?, ?)
	ON CONFLICT(theme) DO UPDATE SET count = theme_counts.count + excluded.count`, theme, n)
	return err
}

// UpsertRhymeWord adds w.Frequency to the (word, source) row and refreshes
// its pronunciation fields.
func UpsertRhymeWord(db DBExecutor, w RhymeWord) error {
	if w.Word == "" || w.RhymeKey == "" {
		return fmt.Errorf("rhyme word needs word and key")
	}
	if w.Frequency < 1 {
		return fmt.Errorf("frequency must be positive, got %d", w.Frequency)
	}
	_, err := db.Exec(`INSERT INTO rhyme_words (word, source, rhyme_key, syllables, pron_source, frequency)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(word, source) DO UPDATE SET
	  frequency = rhyme_words.frequency + excluded.frequency,
	  rhyme_key = excluded.rhyme_key,
	  syllables = excluded.syllables,
	  pron_source = excluded.pron_source`,
		w.Word, w.Source, w.RhymeKey, w.Syllables, w.PronSource, w.Frequency)
	return err
}

// GetRhymeWordsByPronSource lists rhyme words whose pronunciation came from
// the given strategy ("dictionary" or "heuristic"). Empty matches all.
func GetRhymeWordsByPronSource(db DBExecutor, pronSource string) ([]RhymeWord, error) {
	rows, err := db.Query(`SELECT word, source, rhyme_key, syllables, pron_source, frequency FROM rhyme_words
	WHERE ? = '' OR pron_source = ? ORDER BY word, source`, pronSource, pronSource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RhymeWord
	for rows.Next() {
		var w RhymeWord
		if err := rows.Scan(&w.Word, &w.Source, &w.RhymeKey, &w.Syllables, &w.PronSource, &w.Frequency); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpdateRhymePronunciation rewrites the pronunciation fields of every row
// for word.
func UpdateRhymePronunciation(db DBExecutor, word, key string, syllables int, pronSource string) (int64, error) {
	if word == "" || key == "" {
		return 0, fmt.Errorf("word and key must be non-empty")
	}
	res, err := db.Exec(`UPDATE rhyme_words SET rhyme_key = ?, syllables = ?, pron_source = ? WHERE word = ?`,
		key, syllables, pronSource, word)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetLinePronunciations lists the stored syllable count and rhyme key of
// every line.
func GetLinePronunciations(db DBExecutor) ([]LinePronunciation, error) {
	rows, err := db.Query(`SELECT id, text, syllables, rhyme_key FROM lines ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LinePronunciation
	for rows.Next() {
		var l LinePronunciation
		if err := rows.Scan(&l.ID, &l.Text, &l.Syllables, &l.RhymeKey); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateLinePronunciation rewrites the syllable count and rhyme key of the
// line with the given id.
func UpdateLinePronunciation(db DBExecutor, id int64, key string, syllables int) error {
	res, err := db.Exec(`UPDATE lines SET rhyme_key = ?, syllables = ? WHERE id = ?`, key, syllables, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("line %d not found", id)
	}
	return nil
}

// LoadCorpus reads the persisted state back into a snapshot that
// corpus.Restore can merge.
func LoadCorpus(db DBExecutor) (corpus.Snapshot, error) {
	snap := corpus.Snapshot{
		Vocabulary: make(map[string]int),
		Themes:     make(map[string]int),
	}

	if err := scanCounts(db, `SELECT word, count FROM vocabulary`, snap.Vocabulary); err != nil {
		return snap, fmt.Errorf("load vocabulary: %w", err)
	}
	if err := scanCounts(db, `SELECT theme, count FROM theme_counts`, snap.Themes); err != nil {
		return snap, fmt.Errorf("load themes: %w", err)
	}

	rws, err := GetRhymeWordsByPronSource(db, "")
	if err != nil {
		return snap, fmt.Errorf("load rhyme words: %w", err)
	}
	for _, w := range rws {
		snap.RhymeWords = append(snap.RhymeWords, corpus.RhymeSeed{Word: w.Word, Source: w.Source, Count: w.Frequency})
	}

	lines, err := loadLines(db)
	if err != nil {
		return snap, fmt.Errorf("load lines: %w", err)
	}
	snap.Lines = lines
	return snap, nil
}

func scanCounts(db DBExecutor, query string, into map[string]int) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		into[k] = n
	}
	return rows.Err()
}

func loadLines(db DBExecutor) ([]corpus.Line, error) {
	rows, err := db.Query(`SELECT s.name, l.text, l.words, l.section, l.ordinal, l.position, l.syllables, l.rhyme_key, l.themes
	FROM lines l JOIN sources s ON s.id = l.source_id
	ORDER BY l.source_id, l.seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []corpus.Line
	for rows.Next() {
		var (
			l                      corpus.Line
			words, section, themes string
			key                    string
		)
		if err := rows.Scan(&l.Source, &l.Text, &words, &section, &l.Ordinal, &l.Position, &l.Syllables, &key, &themes); err != nil {
			return nil, err
		}
		l.Words = splitNonEmpty(words, " ")
		l.Themes = splitNonEmpty(themes, ",")
		l.RhymeKey = phonetic.RhymeKey(key)
		// Rows written by newer label sets degrade to Unknown.
		l.Section, _ = lyrics.ParseSectionType(section)
		out = append(out, l)
	}
	return out, rows.Err()
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
