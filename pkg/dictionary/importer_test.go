package dictionary

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/lyricist/pkg/corpus"
	"github.com/japaniel/lyricist/pkg/db"
	"github.com/japaniel/lyricist/pkg/phonetic"
)

func openTestDB(t *testing.T) *sql.DB {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetMaxOpenConns(1)
	if err := db.InitDB(conn); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return conn
}

func TestImporter(t *testing.T) {
	conn := openTestDB(t)

	words := []db.RhymeWord{
		{Word: "love", Source: "a", RhymeKey: "OW V", Syllables: 1, PronSource: "heuristic", Frequency: 2},
		{Word: "love", Source: "b", RhymeKey: "OW V", Syllables: 1, PronSource: "heuristic", Frequency: 1},
		{Word: "zzyzx", Source: "a", RhymeKey: "IH K S", Syllables: 1, PronSource: "heuristic", Frequency: 1},
		{Word: "cat", Source: "a", RhymeKey: "AE T", Syllables: 1, PronSource: "dictionary", Frequency: 1},
	}
	for _, w := range words {
		if err := db.UpsertRhymeWord(conn, w); err != nil {
			t.Fatalf("seed %s: %v", w.Word, err)
		}
	}

	entries, _, err := ParseCMU(strings.NewReader("LOVE  L AH1 V\nCAT  K AE1 T\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	count, err := NewImporter(conn, New(entries), quiet).ProcessUpdates()
	if err != nil {
		t.Fatalf("process updates: %v", err)
	}
	if count.Words != 1 || count.Lines != 0 {
		t.Errorf("expected 1 updated word and no lines, got %+v", count)
	}

	rows, err := db.GetRhymeWordsByPronSource(conn, "dictionary")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 dictionary rows, got %+v", rows)
	}
	for _, r := range rows {
		if r.Word == "love" && r.RhymeKey != "AH V" {
			t.Errorf("love re-keyed to %q, want %q", r.RhymeKey, "AH V")
		}
	}

	left, _ := db.GetRhymeWordsByPronSource(conn, "heuristic")
	if len(left) != 1 || left[0].Word != "zzyzx" {
		t.Errorf("expected only zzyzx left heuristic, got %+v", left)
	}
}

func TestImporterRekeysLines(t *testing.T) {
	conn := openTestDB(t)

	// Lines keyed without a dictionary, the way a first run stores them.
	h := phonetic.NewResolver(nil)
	lines := []corpus.Line{
		{Text: "I said zorblay", Syllables: h.LineSyllables("I said zorblay"), RhymeKey: h.Key("zorblay")},
		{Text: "you should buy", Syllables: h.LineSyllables("you should buy"), RhymeKey: h.Key("buy")},
	}
	id, err := db.CreateOrGetSource(conn, "song", "Song", "", "", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	for i, l := range lines {
		if err := db.SaveLine(conn, id, i, l); err != nil {
			t.Fatalf("save line: %v", err)
		}
	}
	for _, w := range []string{"zorblay", "buy"} {
		rw := db.RhymeWord{Word: w, Source: "Song", RhymeKey: string(h.Key(w)), Syllables: 1, PronSource: "heuristic", Frequency: 1}
		if err := db.UpsertRhymeWord(conn, rw); err != nil {
			t.Fatalf("seed %s: %v", w, err)
		}
	}

	entries, _, err := ParseCMU(strings.NewReader("ZORBLAY  Z AO0 R B L AY1\nBUY  B AY1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dict := New(entries)
	count, err := NewImporter(conn, dict, quiet).ProcessUpdates()
	if err != nil {
		t.Fatalf("process updates: %v", err)
	}
	if count.Words != 2 || count.Lines != 1 {
		t.Fatalf("expected 2 words and 1 line updated, got %+v", count)
	}

	snap, err := db.LoadCorpus(conn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	restored := corpus.New(phonetic.NewResolver(dict), corpus.WithLogger(quiet))
	restored.Restore(snap)
	got := restored.SearchLines(corpus.LineQuery{RhymesWith: "buy"})
	if len(got) != 2 {
		t.Fatalf("expected both lines to rhyme with buy, got %+v", got)
	}
	for _, l := range got {
		if l.RhymeKey != "AY" {
			t.Errorf("line %q keyed %q, want AY", l.Text, l.RhymeKey)
		}
	}

	again, err := NewImporter(conn, dict, quiet).ProcessUpdates()
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if again != (Updates{}) {
		t.Errorf("second pass changed rows: %+v", again)
	}
}
