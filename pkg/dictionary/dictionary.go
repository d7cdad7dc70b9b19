// Package dictionary loads pronunciation dictionaries (CMU format or JSON)
// and serves them as a phonetic.Lexicon.
package dictionary

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/japaniel/lyricist/pkg/phonetic"
)

// ErrEmptyDictionary is returned when a source yields no usable entries.
var ErrEmptyDictionary = errors.New("dictionary: no entries")

// Entry is one pronunciation variant of a word. Variant 1 is the primary
// pronunciation; CMU writes further variants as "WORD(2)".
type Entry struct {
	Word     string
	Variant  int
	Phonemes []phonetic.Phoneme
}

// Stats reports what a parse accepted and skipped.
type Stats struct {
	Entries  int
	Skipped  int
	Comments int
}

// Dictionary is an in-memory pronunciation index. It is safe for
// concurrent use and satisfies phonetic.Lexicon.
type Dictionary struct {
	mu    sync.RWMutex
	index map[string][]Entry
}

// New builds a dictionary from entries. Variants of a word are ordered by
// variant number.
func New(entries []Entry) *Dictionary {
	d := &Dictionary{index: make(map[string][]Entry)}
	d.Add(entries...)
	return d
}

// Add merges more entries into the dictionary.
func (d *Dictionary) Add(entries ...Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	touched := make(map[string]struct{})
	for _, e := range entries {
		w := strings.ToLower(e.Word)
		e.Word = w
		if e.Variant == 0 {
			e.Variant = 1
		}
		d.index[w] = append(d.index[w], e)
		touched[w] = struct{}{}
	}
	for w := range touched {
		vs := d.index[w]
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].Variant < vs[j].Variant })
	}
}

// Lookup returns the primary pronunciation of word.
func (d *Dictionary) Lookup(word string) ([]phonetic.Phoneme, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	vs, ok := d.index[strings.ToLower(word)]
	if !ok || len(vs) == 0 {
		return nil, false
	}
	return vs[0].Phonemes, true
}

// Variants returns every pronunciation of word, primary first.
func (d *Dictionary) Variants(word string) []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Entry(nil), d.index[strings.ToLower(word)]...)
}

// Len is the number of distinct words.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.index)
}

// errSkipLine marks a CMU line that carries no entry.
var errSkipLine = errors.New("skip line")

// ParseCMU reads the CMU Pronouncing Dictionary text format:
//
//	;;; comment
//	HOUSE  HH AW1 S
//	house(2) hh aw1 z
//
// Both the classic two-space and the newer single-space layouts are
// accepted. Lines with unknown phonemes are skipped and counted.
func ParseCMU(r io.Reader) ([]Entry, Stats, error) {
	var (
		entries []Entry
		stats   Stats
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		e, err := parseLine(sc.Text())
		switch {
		case errors.Is(err, errSkipLine):
			stats.Comments++
			continue
		case err != nil:
			stats.Skipped++
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("dictionary: read cmu: %w", err)
	}
	stats.Entries = len(entries)
	if len(entries) == 0 {
		return nil, stats, ErrEmptyDictionary
	}
	return entries, stats, nil
}

func parseLine(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, ";;;") {
		return Entry{}, errSkipLine
	}
	if i := strings.Index(line, "#"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Entry{}, fmt.Errorf("malformed line %q", line)
	}
	word, variant := parseWordAndVariant(fields[0])
	ph, err := phonetic.ParseARPAbet(strings.Join(fields[1:], " "))
	if err != nil {
		return Entry{}, fmt.Errorf("word %q: %w", word, err)
	}
	return Entry{Word: word, Variant: variant, Phonemes: ph}, nil
}

// parseWordAndVariant splits "HOUSE(2)" into ("house", 2).
func parseWordAndVariant(raw string) (string, int) {
	word := strings.ToLower(raw)
	open := strings.LastIndexByte(word, '(')
	if open <= 0 || !strings.HasSuffix(word, ")") {
		return word, 1
	}
	n, err := strconv.Atoi(word[open+1 : len(word)-1])
	if err != nil || n < 1 {
		return word, 1
	}
	return word[:open], n
}

// jsonEntry is the JSON layout: {"word": "cat", "phonemes": "K AE1 T"}.
type jsonEntry struct {
	Word     string `json:"word"`
	Variant  int    `json:"variant,omitempty"`
	Phonemes string `json:"phonemes"`
}

// LoadJSON reads either {"entries": [...]} or a bare array of entries.
func LoadJSON(r io.ReadSeeker) ([]Entry, error) {
	var wrapped struct {
		Entries []jsonEntry `json:"entries"`
	}
	raw := wrapped.Entries
	if err := json.NewDecoder(r).Decode(&wrapped); err == nil && len(wrapped.Entries) > 0 {
		raw = wrapped.Entries
	} else {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("dictionary: parse as object or array: %w", err)
		}
	}

	entries := make([]Entry, 0, len(raw))
	for _, je := range raw {
		ph, err := phonetic.ParseARPAbet(je.Phonemes)
		if err != nil || len(ph) == 0 || je.Word == "" {
			continue
		}
		entries = append(entries, Entry{Word: strings.ToLower(je.Word), Variant: je.Variant, Phonemes: ph})
	}
	if len(entries) == 0 {
		return nil, ErrEmptyDictionary
	}
	return entries, nil
}

// Load reads a dictionary file. ".json" files are parsed as JSON, anything
// else as CMU text; a ".gz" suffix is decompressed first.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.ToLower(path)
	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dictionary: gzip %q: %w", path, err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	if strings.HasSuffix(name, ".json") {
		rs, ok := r.(io.ReadSeeker)
		if !ok {
			data, err := io.ReadAll(r)
			if err != nil {
				return nil, err
			}
			rs = strings.NewReader(string(data))
		}
		entries, err := LoadJSON(rs)
		if err != nil {
			return nil, fmt.Errorf("dictionary: load %q: %w", path, err)
		}
		return New(entries), nil
	}

	entries, _, err := ParseCMU(r)
	if err != nil {
		return nil, fmt.Errorf("dictionary: load %q: %w", path, err)
	}
	return New(entries), nil
}
