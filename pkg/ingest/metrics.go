package ingest

import "go.opentelemetry.io/otel/metric"

const meterName = "github.com/japaniel/lyricist/ingest"

// Metrics holds the ingestion instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// Songs counts processed songs. Use with attribute.String("status", ...)
	// where status is "ingested" or "skipped".
	Songs metric.Int64Counter

	// Lines counts lines applied to the corpus.
	Lines metric.Int64Counter

	// NewWords counts words seen for the first time.
	NewWords metric.Int64Counter

	// BatchFlushes counts committed database batches.
	BatchFlushes metric.Int64Counter

	// WriteErrors counts failed database batches.
	WriteErrors metric.Int64Counter

	// SongDuration tracks how long segmenting and analysing one song takes.
	SongDuration metric.Float64Histogram
}

var durationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Songs, err = m.Int64Counter("lyricist.ingest.songs",
		metric.WithDescription("Songs processed by status."),
	); err != nil {
		return nil, err
	}
	if met.Lines, err = m.Int64Counter("lyricist.ingest.lines",
		metric.WithDescription("Lines applied to the corpus."),
	); err != nil {
		return nil, err
	}
	if met.NewWords, err = m.Int64Counter("lyricist.ingest.new_words",
		metric.WithDescription("Vocabulary words seen for the first time."),
	); err != nil {
		return nil, err
	}
	if met.BatchFlushes, err = m.Int64Counter("lyricist.ingest.batch_flushes",
		metric.WithDescription("Database batches committed."),
	); err != nil {
		return nil, err
	}
	if met.WriteErrors, err = m.Int64Counter("lyricist.ingest.write_errors",
		metric.WithDescription("Database batches that failed."),
	); err != nil {
		return nil, err
	}
	if met.SongDuration, err = m.Float64Histogram("lyricist.ingest.song.duration",
		metric.WithDescription("Time to segment and analyse one song."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}
