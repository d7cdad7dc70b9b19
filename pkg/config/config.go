// Package config loads lyricist settings from YAML and the environment.
package config

import "time"

// Config is the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Database   DatabaseConfig   `yaml:"database"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Themes     ThemesConfig     `yaml:"themes"`
	Index      IndexConfig      `yaml:"index"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LYRICIST_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LYRICIST_LOG_FORMAT" env-default:"text"`
}

// DictionaryConfig locates the pronunciation dictionary. An empty path
// means heuristic pronunciations only.
type DictionaryConfig struct {
	Path         string `yaml:"path"          env:"LYRICIST_DICTIONARY_PATH"`
	URL          string `yaml:"url"           env:"LYRICIST_DICTIONARY_URL"`
	AutoDownload bool   `yaml:"auto_download" env:"LYRICIST_DICTIONARY_AUTO_DOWNLOAD" env-default:"false"`
}

// DatabaseConfig locates the SQLite corpus store. An empty path keeps the
// corpus in memory only.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"LYRICIST_DATABASE_PATH"`
}

// IngestConfig tunes batch ingestion.
type IngestConfig struct {
	Workers       int           `yaml:"workers"        env:"LYRICIST_INGEST_WORKERS"        env-default:"4"`
	BatchSize     int           `yaml:"batch_size"     env:"LYRICIST_INGEST_BATCH_SIZE"     env-default:"50"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"LYRICIST_INGEST_FLUSH_INTERVAL" env-default:"100ms"`
}

// ThemesConfig points at a YAML theme table replacing the built-in one.
type ThemesConfig struct {
	Path string `yaml:"path" env:"LYRICIST_THEMES_PATH"`
}

// IndexConfig tunes the rhyme index.
type IndexConfig struct {
	ExamplesPerSource int `yaml:"examples_per_source" env:"LYRICIST_INDEX_EXAMPLES_PER_SOURCE" env-default:"5"`
}
