package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/lyricist/pkg/config"
	"github.com/japaniel/lyricist/pkg/corpus"
	"github.com/japaniel/lyricist/pkg/db"
	"github.com/japaniel/lyricist/pkg/dictionary"
	"github.com/japaniel/lyricist/pkg/phonetic"
	"github.com/japaniel/lyricist/pkg/rhyme"
)

// app is the wiring shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	dict   *dictionary.Dictionary
	corpus *corpus.Corpus
	conn   *sql.DB
	out    io.Writer
	json   bool
}

// setup loads configuration, the dictionary and, when a database is
// configured, the persisted corpus.
func setup(cmd *cobra.Command, g *globalFlags) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}
	if g.dictPath != "" {
		cfg.Dictionary.Path = g.dictPath
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	a := &app{
		cfg:    cfg,
		logger: config.NewLogger(cfg.Log),
		out:    cmd.OutOrStdout(),
		json:   g.jsonOut,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.dict, err = loadDictionary(ctx, cfg.Dictionary, a.logger); err != nil {
		return nil, err
	}

	themes := corpus.DefaultThemes()
	if cfg.Themes.Path != "" {
		if themes, err = corpus.LoadThemes(cfg.Themes.Path); err != nil {
			return nil, err
		}
	}

	// A nil *Dictionary must not become a non-nil Lexicon.
	var lex phonetic.Lexicon
	if a.dict != nil {
		lex = a.dict
	}
	resolver := phonetic.NewResolver(lex, phonetic.WithLogger(a.logger))
	a.corpus = corpus.New(resolver,
		corpus.WithThemes(themes),
		corpus.WithLogger(a.logger),
		corpus.WithIndexOptions(rhyme.WithExamplesPerSource(cfg.Index.ExamplesPerSource)),
	)

	if cfg.Database.Path != "" {
		if a.conn, err = db.Open(cfg.Database.Path); err != nil {
			return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
		}
		snap, err := db.LoadCorpus(a.conn)
		if err != nil {
			a.conn.Close()
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		a.corpus.Restore(snap)
		a.logger.Debug("corpus restored", "lines", a.corpus.LineCount(), "db", cfg.Database.Path)
	}
	return a, nil
}

func (a *app) Close() {
	if a.conn != nil {
		a.conn.Close()
	}
}

// loadDictionary returns nil when no dictionary is configured or a download
// fails; pronunciations then come from the heuristic alone.
func loadDictionary(ctx context.Context, cfg config.DictionaryConfig, logger *slog.Logger) (*dictionary.Dictionary, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	if cfg.AutoDownload {
		url := cfg.URL
		if url == "" {
			url = dictionary.DefaultURL
		}
		if err := dictionary.EnsureDictionary(ctx, cfg.Path, url, logger); err != nil {
			logger.Warn("dictionary unavailable, using heuristic pronunciations", "path", cfg.Path, "error", err)
			return nil, nil
		}
	}
	d, err := dictionary.Load(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", cfg.Path, err)
	}
	logger.Debug("dictionary loaded", "path", cfg.Path, "words", d.Len())
	return d, nil
}

// print writes v as indented JSON, or calls text when JSON is off.
func (a *app) print(v any, text func(w io.Writer)) error {
	if a.json || text == nil {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out)
	return nil
}

// readInput returns the text of file, or of the joined args, or of stdin.
func readInput(cmd *cobra.Command, file string, args []string) (string, error) {
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case len(args) > 0:
		return strings.Join(args, "\n"), nil
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if len(strings.TrimSpace(string(b))) == 0 {
			return "", errors.New("no input: pass text, --file or pipe lyrics on stdin")
		}
		return string(b), nil
	}
}
