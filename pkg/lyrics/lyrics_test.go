package lyrics

import (
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version())
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  SectionType
	}{
		{"Chorus", Hook},
		{"[Chorus: Artist Name]", Hook},
		{"Hook (x2)", Hook},
		{"Refren", Hook},
		{"Припев", Hook},
		{"Pre-Chorus", PreHook},
		{"Pre-Refren 2", PreHook},
		{"Post-Chorus", PostHook},
		{"Verse 1", Verse},
		{"Strofa 3", Verse},
		{"Куплет 2", Verse},
		{"Verses", Verse},
		{"Bridge", Bridge},
		{"Pod", Bridge},
		{"Мост", Bridge},
		{"Intro", Intro},
		{"Outro", Outro},
		{"Interlude", Unknown},
		{"Skit", Unknown},
		{"123", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.label))
		})
	}
}

func TestSegmentDeduplicatesRepeatedHook(t *testing.T) {
	raw := "[Hook]\nlove\nme\n[Verse 1]\nfoo\n[Hook]\nlove\nme"
	got := Segment(raw)
	require.Len(t, got, 2)

	assert.Equal(t, Hook, got[0].Type)
	assert.Equal(t, []string{"love", "me"}, got[0].Lines)
	assert.Equal(t, 2, got[0].Occurrences)
	assert.Equal(t, []int{1, 3}, got[0].Positions)
	assert.Equal(t, "Hook", got[0].Label())

	assert.Equal(t, Verse, got[1].Type)
	assert.Equal(t, []string{"foo"}, got[1].Lines)
	assert.Equal(t, 1, got[1].Occurrences)
	assert.Equal(t, []int{2}, got[1].Positions)
}

func TestSegmentWithoutMarkers(t *testing.T) {
	got := Segment("line one\n\nline two\r\nline three")
	require.Len(t, got, 1)
	assert.Equal(t, Unknown, got[0].Type)
	assert.Equal(t, []string{"line one", "line two", "line three"}, got[0].Lines)
	assert.Equal(t, []int{1}, got[0].Positions)
}

func TestSegmentEmpty(t *testing.T) {
	assert.Empty(t, Segment(""))
	assert.Empty(t, Segment("\n  \n"))
	assert.Empty(t, Segment("[Verse 1]\n\n[Chorus]\n"))
}

func TestSegmentNumbering(t *testing.T) {
	raw := strings.Join([]string{
		"[Verse 1]", "a", "b",
		"[Chorus]", "c",
		"[Verse 2]", "d", "e",
		"[Chorus]", "c",
		"[Verse 3]", "a", "b",
	}, "\n")
	got := Segment(raw)
	require.Len(t, got, 3)

	assert.Equal(t, "Verse 1", got[0].Label())
	assert.Equal(t, []int{1, 5}, got[0].Positions)
	assert.Equal(t, "Hook", got[1].Label())
	assert.Equal(t, []int{2, 4}, got[1].Positions)
	assert.Equal(t, "Verse 2", got[2].Label())
	assert.True(t, got[2].Numbered)
	assert.False(t, got[1].Numbered)
}

func TestSegmentSameLinesDifferentType(t *testing.T) {
	got := Segment("[Hook]\nsame\n[Outro]\nsame")
	require.Len(t, got, 2)
	assert.Equal(t, Hook, got[0].Type)
	assert.Equal(t, Outro, got[1].Type)
}

func TestSegmentPositionsSkipBlankBlocks(t *testing.T) {
	got := Segment("[Intro]\n\n[Verse]\nx\n[Bridge]\n[Outro]\ny")
	require.Len(t, got, 2)
	assert.Equal(t, []int{1}, got[0].Positions)
	assert.Equal(t, []int{2}, got[1].Positions)
}

func TestSegmentPreamble(t *testing.T) {
	t.Run("short lead-in is an intro", func(t *testing.T) {
		got := Segment("yeah\nuh\n[Verse 1]\none\ntwo\nthree\nfour")
		require.Len(t, got, 2)
		assert.Equal(t, Intro, got[0].Type)
		assert.Equal(t, []int{1}, got[0].Positions)
	})
	t.Run("long lead-in stays unknown", func(t *testing.T) {
		got := Segment("a\nb\nc\nd\ne\n[Verse 1]\nf\ng")
		require.Len(t, got, 2)
		assert.Equal(t, Unknown, got[0].Type)
	})
	t.Run("lead-in longer than half the first block", func(t *testing.T) {
		got := Segment("a\nb\n[Verse 1]\nc\nd\ne")
		assert.Equal(t, Unknown, got[0].Type)
	})
	t.Run("repeated lead-in stays unknown", func(t *testing.T) {
		got := Segment("hey\n[Verse 1]\none\ntwo\n[Hook]\nhey")
		assert.Equal(t, Unknown, got[0].Type)
	})
}

func TestSegmentInvariants(t *testing.T) {
	raw := "intro line\n[Verse 1]\na\nb\nc\n[Chorus]\nx\n[Verse 2]\nd\n[Chorus]\nx\n[Chorus]\nx\n[Outro]\nz"
	got := Segment(raw)
	seen := map[int]bool{}
	for _, s := range got {
		assert.NotEmpty(t, s.Lines)
		assert.Equal(t, s.Occurrences, len(s.Positions))
		for i := 1; i < len(s.Positions); i++ {
			assert.Less(t, s.Positions[i-1], s.Positions[i])
		}
		for _, p := range s.Positions {
			assert.False(t, seen[p], "position %d used twice", p)
			seen[p] = true
		}
	}
	assert.Len(t, seen, 7)
}

func TestSegmentIsDeterministic(t *testing.T) {
	inputs := []string{
		"",
		"just one line",
		"yeah\nuh\n[Verse 1]\none\ntwo\nthree\nfour",
		"[Intro]\n\n[Verse]\nx\n[Bridge]\n[Outro]\ny",
		"[Verse 1]\na\nb\n[Chorus]\nx\ny\n[Verse 2]\nc\n[Chorus]\nx\ny\n[Chorus]\nx\ny",
		"[Hook]\nsame\n[Outro]\nsame",
		"line one\r\nline two\r\n\r\nline three",
		"[Куплет 1]\nпари\nвари\n[Припев]\nнощ\nмощ",
	}
	for _, in := range inputs {
		first := Segment(in)
		assert.Equal(t, first, Segment(in), "input %q", in)
	}
}

func TestSectionJSON(t *testing.T) {
	b, err := json.Marshal(Section{Type: PreHook, Ordinal: 1, Lines: []string{"x"}, Occurrences: 1, Positions: []int{1}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"pre-hook"`)

	var s Section
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, PreHook, s.Type)

	_, err = ParseSectionType("chorus")
	assert.Error(t, err)
}

func TestStripScrapeNoise(t *testing.T) {
	raw := "3 Contributors\nSong Title Lyrics\n[Verse 1]\nreal line\nVersuri traduse\nYou might also like\n\n[Chorus]\nhook line\n12Embed"
	assert.Equal(t, "[Verse 1]\nreal line\n\n[Chorus]\nhook line", StripScrapeNoise(raw))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"money", "money", "everywhere"}, Words("Money, money... everywhere!"))
	assert.Equal(t, []string{"don't", "stop"}, Words("Don’t stop 4ever 2"))
	assert.Equal(t, "time", LastWord("all the time."))
	assert.Equal(t, "", LastWord("123 ..."))
	assert.Equal(t, "", Word("x2"))
}

func TestExtractHTML(t *testing.T) {
	f, err := os.Open("testdata/sample_song.html")
	require.NoError(t, err)
	defer f.Close()

	page, err := ExtractHTML(f)
	require.NoError(t, err)
	assert.Equal(t, "Night Shift", page.Artist)
	assert.Equal(t, "Paper Lanterns", page.Title)
	assert.NotContains(t, page.Lyrics, "Contributors")
	assert.NotContains(t, page.Lyrics, "Embed")
	assert.True(t, strings.HasPrefix(page.Lyrics, "[Verse 1]\nPaper lanterns in the rain"))

	sections := Segment(page.Lyrics)
	require.Len(t, sections, 3)
	assert.Equal(t, Hook, sections[1].Type)
	assert.Equal(t, []string{"Hold the light, hold the line", "We were golden, we were fine"}, sections[1].Lines)
	assert.Equal(t, 2, sections[1].Occurrences)
	assert.Equal(t, "Verse 2", sections[2].Label())
}

func TestExtractPageFallsBackToReadability(t *testing.T) {
	f, err := os.Open("testdata/sample_article.html")
	require.NoError(t, err)
	defer f.Close()

	u, _ := url.Parse("http://localhost/notes")
	page, err := ExtractPage(f, u)
	require.NoError(t, err)
	assert.Contains(t, page.Title, "Quiet Song")
	assert.Contains(t, page.Lyrics, "river keeps the tempo")
}

func TestStripRuby(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "<ruby>漢字<rt>かんじ</rt></ruby>", "<ruby>漢字</ruby>"},
		{"with rp", "<ruby>漢字<rp>(</rp><rt>かんじ</rt><rp>)</rp></ruby>", "<ruby>漢字</ruby>"},
		{"multiple", "<ruby>私<rt>わたし</rt></ruby>は<ruby>猫<rt>ねこ</rt></ruby>", "<ruby>私</ruby>は<ruby>猫</ruby>"},
		{"attributes", "<ruby class='a'>夢<RT class='b'>ゆめ</RT></ruby>", "<ruby class='a'>夢</ruby>"},
		{"no ruby", "<p>plain</p>", "<p>plain</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(StripRuby([]byte(tt.input))))
		})
	}
}

func TestExtractPageDropsRubyReadings(t *testing.T) {
	html := `<html><head><title>Tsuki – Yoru | Genius Lyrics</title></head><body>` +
		`<div data-lyrics-container="true">[Verse]<br><ruby>夜<rt>よる</rt></ruby>の<ruby>月<rp>(</rp><rt>つき</rt><rp>)</rp></ruby></div>` +
		`</body></html>`
	page, err := ExtractPage(strings.NewReader(html), nil)
	require.NoError(t, err)
	assert.Contains(t, page.Lyrics, "夜の月")
	assert.NotContains(t, page.Lyrics, "よる")
	assert.NotContains(t, page.Lyrics, "(")
}
