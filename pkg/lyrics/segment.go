package lyrics

import (
	"regexp"
	"strings"
)

// A marker is a line consisting solely of a bracketed label.
var reMarker = regexp.MustCompile(`^\[([^\[\]]*)\]$`)

// Unlabelled text before the first marker becomes an Intro only when it is
// short relative to what follows.
const maxIntroLines = 4

type block struct {
	marked bool
	typ    SectionType
	lines  []string
}

// SplitLines splits text on any newline convention and trims each line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// IsMarker reports whether line is a section marker and returns its label.
func IsMarker(line string) (string, bool) {
	m := reMarker.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Segment splits raw lyrics into sections.
//
// Lines are grouped under the most recent marker. Blocks without lines are
// dropped and positions are 1-based over the blocks that remain. A block
// whose type and lines equal an earlier block is folded into it, adding its
// position. Text without any marker becomes a single Unknown section, and
// empty input yields no sections.
func Segment(raw string) []Section {
	blocks, anyMarker := splitBlocks(raw)
	if len(blocks) == 0 {
		return []Section{}
	}
	if anyMarker && !blocks[0].marked {
		blocks[0].typ = preambleType(blocks)
	}

	var (
		out      []Section
		seen     = make(map[string]int)
		ordinals = make(map[SectionType]int)
	)
	for i, b := range blocks {
		pos := i + 1
		key := b.typ.String() + "\x00" + strings.Join(b.lines, "\n")
		if idx, ok := seen[key]; ok {
			out[idx].Occurrences++
			out[idx].Positions = append(out[idx].Positions, pos)
			continue
		}
		ordinals[b.typ]++
		seen[key] = len(out)
		out = append(out, Section{
			Type:        b.typ,
			Ordinal:     ordinals[b.typ],
			Lines:       b.lines,
			Occurrences: 1,
			Positions:   []int{pos},
		})
	}
	for i := range out {
		out[i].Numbered = ordinals[out[i].Type] > 1
	}
	return out
}

func splitBlocks(raw string) ([]block, bool) {
	var (
		blocks    []block
		cur       block
		anyMarker bool
	)
	flush := func() {
		if len(cur.lines) > 0 {
			blocks = append(blocks, cur)
		}
	}
	for _, line := range SplitLines(raw) {
		if label, ok := IsMarker(line); ok {
			anyMarker = true
			flush()
			cur = block{marked: true, typ: NormalizeLabel(label)}
			continue
		}
		if line == "" {
			continue
		}
		cur.lines = append(cur.lines, line)
	}
	flush()
	return blocks, anyMarker
}

// preambleType decides whether the unlabelled lead-in is an Intro: at most
// maxIntroLines lines, no more than half the first labelled block, and not
// repeated anywhere else in the song.
func preambleType(blocks []block) SectionType {
	pre := blocks[0]
	if len(pre.lines) > maxIntroLines || len(blocks) < 2 {
		return Unknown
	}
	if 2*len(pre.lines) > len(blocks[1].lines) {
		return Unknown
	}
	body := strings.Join(pre.lines, "\n")
	for _, b := range blocks[1:] {
		if strings.Join(b.lines, "\n") == body {
			return Unknown
		}
	}
	return Intro
}
