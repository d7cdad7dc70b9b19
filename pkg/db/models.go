package db

import "time"

// Source is one ingested song or document.
type Source struct {
	ID                int64
	UID               string
	Name              string
	Artist            string
	Title             string
	URL               string
	AddedAt           time.Time
	LastProcessedLine int
	Completed         bool
}

// RhymeWord is a persisted rhyme index entry, keyed by word and source.
type RhymeWord struct {
	Word       string
	Source     string
	RhymeKey   string
	Syllables  int
	PronSource string
	Frequency  int
}

// LinePronunciation is the stored pronunciation summary of one line.
type LinePronunciation struct {
	ID        int64
	Text      string
	Syllables int
	RhymeKey  string
}
