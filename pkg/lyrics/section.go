// Package lyrics splits raw lyric text into labelled, deduplicated sections
// and cleans up text scraped from lyric sites.
package lyrics

import (
	"fmt"
	"strconv"
)

// SectionType is the role a block of lines plays in a song.
type SectionType int

const (
	Unknown SectionType = iota
	Intro
	PreHook
	Hook
	PostHook
	Verse
	Bridge
	Outro
)

// SectionTypes lists every type in song order.
var SectionTypes = []SectionType{Intro, PreHook, Hook, PostHook, Verse, Bridge, Outro, Unknown}

func (t SectionType) String() string {
	switch t {
	case Intro:
		return "intro"
	case PreHook:
		return "pre-hook"
	case Hook:
		return "hook"
	case PostHook:
		return "post-hook"
	case Verse:
		return "verse"
	case Bridge:
		return "bridge"
	case Outro:
		return "outro"
	default:
		return "unknown"
	}
}

// Title is the display form used in labels ("Pre-Hook").
func (t SectionType) Title() string {
	switch t {
	case Intro:
		return "Intro"
	case PreHook:
		return "Pre-Hook"
	case Hook:
		return "Hook"
	case PostHook:
		return "Post-Hook"
	case Verse:
		return "Verse"
	case Bridge:
		return "Bridge"
	case Outro:
		return "Outro"
	default:
		return "Unknown"
	}
}

// ParseSectionType is the inverse of String.
func ParseSectionType(s string) (SectionType, error) {
	for _, t := range SectionTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown section type %q", s)
}

func (t SectionType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *SectionType) UnmarshalText(b []byte) error {
	v, err := ParseSectionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Section is one distinct block of a song. A block repeated verbatim under
// the same type is stored once; Positions records every place it appeared.
type Section struct {
	Type        SectionType `json:"type"`
	Ordinal     int         `json:"ordinal"`
	Numbered    bool        `json:"numbered"`
	Lines       []string    `json:"lines"`
	Occurrences int         `json:"occurrences"`
	Positions   []int       `json:"positions"`
}

// Label is the human-readable name, "Verse 2" when several distinct
// sections share the type and plain "Hook" otherwise.
func (s Section) Label() string {
	if s.Numbered {
		return s.Type.Title() + " " + strconv.Itoa(s.Ordinal)
	}
	return s.Type.Title()
}
