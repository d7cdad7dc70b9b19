package corpus

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var defaultThemesYAML []byte

// Theme is a named keyword set with a mood descriptor.
type Theme struct {
	Name     string   `yaml:"-" json:"name"`
	Mood     string   `yaml:"mood" json:"mood,omitempty"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

type themeFile struct {
	Themes map[string]Theme `yaml:"themes"`
}

// Themes is an immutable theme table. A line matches a theme when any of
// its words is one of the theme's keywords.
type Themes struct {
	list      []Theme
	byKeyword map[string][]string
}

// NewThemes builds a table from theme name to keywords.
func NewThemes(keywords map[string][]string) *Themes {
	list := make([]Theme, 0, len(keywords))
	for name, kws := range keywords {
		list = append(list, Theme{Name: name, Keywords: append([]string(nil), kws...)})
	}
	return buildThemes(list)
}

func buildThemes(list []Theme) *Themes {
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	t := &Themes{list: list, byKeyword: make(map[string][]string)}
	for i := range list {
		for j, kw := range list[i].Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			list[i].Keywords[j] = kw
			if kw == "" {
				continue
			}
			names := t.byKeyword[kw]
			if len(names) == 0 || names[len(names)-1] != list[i].Name {
				t.byKeyword[kw] = append(names, list[i].Name)
			}
		}
	}
	return t
}

// ParseThemes decodes a YAML theme table. Unknown fields are rejected.
func ParseThemes(r io.Reader) (*Themes, error) {
	var f themeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("themes: decode yaml: %w", err)
	}
	if len(f.Themes) == 0 {
		return nil, errors.New("themes: no themes defined")
	}
	list := make([]Theme, 0, len(f.Themes))
	var errs []error
	for name, th := range f.Themes {
		if len(th.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("themes: %q has no keywords", name))
		}
		th.Name = name
		list = append(list, th)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return buildThemes(list), nil
}

// LoadThemes reads a YAML theme table from path.
func LoadThemes(path string) (*Themes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open %q: %w", path, err)
	}
	defer f.Close()
	return ParseThemes(f)
}

// DefaultThemes returns the built-in table (money, love, enemies, party,
// street) with English, Bulgarian and Balkan keywords.
func DefaultThemes() *Themes {
	t, err := ParseThemes(bytes.NewReader(defaultThemesYAML))
	if err != nil {
		panic(fmt.Sprintf("corpus: embedded themes: %v", err))
	}
	return t
}

// Match returns the sorted names of all themes whose keywords occur in
// words.
func (t *Themes) Match(words []string) []string {
	if t == nil {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, w := range words {
		for _, name := range t.byKeyword[w] {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// List returns the themes ordered by name.
func (t *Themes) List() []Theme {
	if t == nil {
		return nil
	}
	return append([]Theme(nil), t.list...)
}

// Mood returns the mood of the named theme.
func (t *Themes) Mood(name string) string {
	for _, th := range t.List() {
		if th.Name == name {
			return th.Mood
		}
	}
	return ""
}
