package corpus

import (
	"sort"
	"strings"

	"github.com/japaniel/lyricist/pkg/lyrics"
	"github.com/japaniel/lyricist/pkg/phonetic"
	"github.com/japaniel/lyricist/pkg/rhyme"
)

// DefaultSearchLimit bounds SearchLines when no limit is given.
const DefaultSearchLimit = 50

// LineQuery filters stored lines. Zero fields match everything.
type LineQuery struct {
	Theme        string
	RhymesWith   string
	RhymeKey     phonetic.RhymeKey
	Contains     string
	Source       string
	Sections     []lyrics.SectionType
	MinSyllables int
	MaxSyllables int
	Limit        int
}

// SearchLines returns stored lines matching q in ingestion order.
func (c *Corpus) SearchLines(q LineQuery) []Line {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	key := q.RhymeKey
	if q.RhymesWith != "" {
		key = c.resolver.Key(q.RhymesWith)
		if key == "" {
			return []Line{}
		}
	}
	needle := strings.ToLower(q.Contains)

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []Line{}
	for _, l := range c.lines {
		if len(out) >= limit {
			break
		}
		switch {
		case q.Theme != "" && !containsString(l.Themes, q.Theme):
		case key != "" && l.RhymeKey != key:
		case needle != "" && !strings.Contains(strings.ToLower(l.Text), needle):
		case q.Source != "" && l.Source != q.Source:
		case len(q.Sections) > 0 && !containsSection(q.Sections, l.Section):
		case q.MinSyllables > 0 && l.Syllables < q.MinSyllables:
		case q.MaxSyllables > 0 && l.Syllables > q.MaxSyllables:
		default:
			out = append(out, l)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsSection(list []lyrics.SectionType, t lyrics.SectionType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// KeyCount is a rhyme key with the words that ended lines on it.
type KeyCount struct {
	Key   phonetic.RhymeKey `json:"key"`
	Count int               `json:"count"`
	Words []string          `json:"words"`
}

// Study summarises one source: its favourite line endings, vocabulary and
// end-rhyme groups.
type Study struct {
	Source     string            `json:"source"`
	Lines      int               `json:"lines"`
	Endings    []rhyme.WordCount `json:"endings"`
	Vocabulary []rhyme.WordCount `json:"vocabulary"`
	RhymeKeys  []KeyCount        `json:"rhyme_keys"`
}

// Study collects the lines ingested under source. Endings are rime
// spellings of line-final words.
func (c *Corpus) Study(source string, limit int) Study {
	st := Study{Source: source}
	endings := make(map[string]int)
	vocab := make(map[string]int)
	keys := make(map[phonetic.RhymeKey]*KeyCount)

	c.mu.RLock()
	for _, l := range c.lines {
		if l.Source != source {
			continue
		}
		st.Lines++
		for _, w := range l.Words {
			if !StopWords[w] {
				vocab[w]++
			}
		}
		if len(l.Words) == 0 || l.RhymeKey == "" {
			continue
		}
		last := l.Words[len(l.Words)-1]
		endings["-"+phonetic.Rime(last)]++
		kc, ok := keys[l.RhymeKey]
		if !ok {
			kc = &KeyCount{Key: l.RhymeKey}
			keys[l.RhymeKey] = kc
		}
		kc.Count++
		if !containsString(kc.Words, last) {
			kc.Words = append(kc.Words, last)
		}
	}
	c.mu.RUnlock()

	st.Endings = topCounts(endings, limit)
	st.Vocabulary = topCounts(vocab, limit)
	st.RhymeKeys = make([]KeyCount, 0, len(keys))
	for _, kc := range keys {
		sort.Strings(kc.Words)
		st.RhymeKeys = append(st.RhymeKeys, *kc)
	}
	sort.Slice(st.RhymeKeys, func(i, j int) bool {
		if st.RhymeKeys[i].Count != st.RhymeKeys[j].Count {
			return st.RhymeKeys[i].Count > st.RhymeKeys[j].Count
		}
		return st.RhymeKeys[i].Key < st.RhymeKeys[j].Key
	})
	if limit > 0 && len(st.RhymeKeys) > limit {
		st.RhymeKeys = st.RhymeKeys[:limit]
	}
	return st
}

func topCounts(m map[string]int, limit int) []rhyme.WordCount {
	out := make([]rhyme.WordCount, 0, len(m))
	for w, n := range m {
		out = append(out, rhyme.WordCount{Word: w, Count: n})
	}
	sortCounts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
