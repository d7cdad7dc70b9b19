package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/lyricist/pkg/ingest"
	"github.com/japaniel/lyricist/pkg/lyrics"
)

// maxBodySize bounds fetched pages.
const maxBodySize = 10 * 1024 * 1024

var fetchClient = &http.Client{Timeout: 30 * time.Second}

func ingestCmd(g *globalFlags) *cobra.Command {
	var (
		files  []string
		dir    string
		urls   []string
		artist string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Add songs to the corpus from files, a directory or web pages",
		Long: `ingest segments and analyses songs and adds them to the corpus. With a
database configured the songs are persisted and sources already ingested
are skipped, so an interrupted run can simply be repeated.

Files named "Artist - Title.txt" get their artist and title from the
name; --artist and --title override that for a single file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 && dir == "" && len(urls) == 0 {
				return errors.New("nothing to ingest: pass --file, --dir or --url")
			}

			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if dir != "" {
				found, err := lyricFiles(dir)
				if err != nil {
					return err
				}
				files = append(files, found...)
			}

			var songs []ingest.Song
			for _, path := range files {
				s, err := songFromFile(path)
				if err != nil {
					return err
				}
				songs = append(songs, s)
			}
			for _, u := range urls {
				a.logger.Info("fetching", "url", u)
				s, err := fetchSong(ctx, u)
				if err != nil {
					return err
				}
				songs = append(songs, s)
			}
			if len(songs) == 1 && (artist != "" || title != "") {
				s := songs[0]
				if artist != "" {
					s.Artist = artist
				}
				if title != "" {
					s.Title = title
				}
				songs[0] = ingest.NewSong(s.Artist, s.Title, s.URL, s.Text)
			}

			tel := newTelemetry()
			defer func() {
				if err := tel.Shutdown(context.Background()); err != nil {
					a.logger.Warn("failed to shut down metrics", "error", err)
				}
			}()
			metrics, err := ingest.NewMetrics(tel.mp)
			if err != nil {
				return err
			}

			ig := ingest.NewIngester(a.conn, a.corpus)
			ig.Workers = a.cfg.Ingest.Workers
			ig.BatchSize = a.cfg.Ingest.BatchSize
			ig.FlushInterval = a.cfg.Ingest.FlushInterval
			ig.Logger = a.logger
			ig.Metrics = metrics
			ig.OnProgress = func(done, total int) {
				a.logger.Debug("ingest progress", "done", done, "total", total)
			}

			sum, err := ig.Ingest(ctx, songs)
			tel.Log(context.Background(), a.logger)
			a.logger.Debug("pronunciation cache", "entries", a.corpus.Resolver().CacheLen())
			if err != nil {
				return fmt.Errorf("ingestion failed: %w", err)
			}
			return a.print(sum, func(w io.Writer) {
				fmt.Fprintf(w, "ingested %d songs (%d skipped), %d lines, %d new words\n",
					sum.Songs, sum.Skipped, sum.Lines, sum.WordsAdded)
			})
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&files, "file", "f", nil, "Lyric text files to ingest")
	f.StringVarP(&dir, "dir", "d", "", "Ingest every .txt and .lyrics file in a directory")
	f.StringSliceVarP(&urls, "url", "u", nil, "Lyric pages to fetch and ingest")
	f.StringVar(&artist, "artist", "", "Artist of a single ingested song")
	f.StringVar(&title, "title", "", "Title of a single ingested song")
	return cmd
}

// lyricFiles lists the lyric files directly inside dir, sorted by name.
func lyricFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".lyrics":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func songFromFile(path string) (ingest.Song, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ingest.Song{}, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artist, title, ok := strings.Cut(base, " - ")
	if !ok {
		artist, title = "", base
	}
	return ingest.NewSong(strings.TrimSpace(artist), strings.TrimSpace(title), "", string(b)), nil
}

// fetchSong downloads a lyric page and extracts the song from it.
func fetchSong(ctx context.Context, rawURL string) (ingest.Song, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return ingest.Song{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ingest.Song{}, fmt.Errorf("failed to create request: %w", err)
	}
	// Lyric sites commonly block non-browser clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := fetchClient.Do(req)
	if err != nil {
		return ingest.Song{}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ingest.Song{}, fmt.Errorf("fetch %s: got status code %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return ingest.Song{}, fmt.Errorf("fetch %s: content-length %d exceeds limit of %d bytes", rawURL, resp.ContentLength, maxBodySize)
	}

	// Read one byte past the limit to tell a full page from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return ingest.Song{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxBodySize {
		return ingest.Song{}, fmt.Errorf("fetch %s: body exceeds limit of %d bytes", rawURL, maxBodySize)
	}

	page, err := lyrics.ExtractPage(bytes.NewReader(body), pageURL)
	if err != nil {
		return ingest.Song{}, fmt.Errorf("extract %s: %w", rawURL, err)
	}
	if strings.TrimSpace(page.Lyrics) == "" {
		return ingest.Song{}, fmt.Errorf("extract %s: no lyrics found", rawURL)
	}
	return ingest.NewSong(page.Artist, page.Title, rawURL, page.Lyrics), nil
}
