package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/lyricist/pkg/corpus"
	"github.com/japaniel/lyricist/pkg/ingest"
)

func TestTelemetryTotals(t *testing.T) {
	tel := newTelemetry()
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	m, err := ingest.NewMetrics(tel.mp)
	require.NoError(t, err)
	ig := ingest.NewIngester(nil, corpus.New(nil))
	ig.Metrics = m

	songs := []ingest.Song{
		ingest.NewSong("Night Shift", "Paper Lanterns", "", paperLanterns),
		ingest.NewSong("Night Shift", "Short", "", "one small line"),
	}
	sum, err := ig.Ingest(context.Background(), songs)
	require.NoError(t, err)

	totals, err := tel.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(sum.Songs), totals["lyricist.ingest.songs.ingested"])
	assert.Equal(t, int64(sum.Lines), totals["lyricist.ingest.lines"])
	assert.Equal(t, int64(sum.WordsAdded), totals["lyricist.ingest.new_words"])
	assert.Equal(t, int64(len(songs)), totals["lyricist.ingest.song.duration.count"])

	var buf bytes.Buffer
	tel.Log(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	assert.Contains(t, buf.String(), "msg=metrics")
	assert.Contains(t, buf.String(), fmt.Sprintf("lyricist.ingest.lines=%d", sum.Lines))
}

func TestTelemetryEmptyBeforeUse(t *testing.T) {
	tel := newTelemetry()
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	totals, err := tel.Totals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, totals)
}
