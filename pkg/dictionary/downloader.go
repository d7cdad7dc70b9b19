package dictionary

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultURL serves the current CMU Pronouncing Dictionary.
const DefaultURL = "https://raw.githubusercontent.com/cmusphinx/cmudict/master/cmudict.dict"

var httpClient = &http.Client{Timeout: 60 * time.Second}

// EnsureDictionary checks if the dictionary exists at path. If not, it
// downloads url (plain text, gzip or tar.gz) and writes the dictionary to
// path atomically. An empty url means DefaultURL.
func EnsureDictionary(ctx context.Context, path, url string, logger *slog.Logger) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("dictionary not found, downloading", "path", path, "url", url)
	if err := download(ctx, url, path); err != nil {
		return fmt.Errorf("dictionary: download %s: %w", url, err)
	}
	logger.Info("dictionary downloaded", "path", path)
	return nil
}

func download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "lyricist-cli")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	body, err := unpack(resp.Body)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(destPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".dict-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), destPath)
}

// unpack sniffs the stream: gzip is decompressed, and a tar inside it is
// searched for the first dictionary file (.dict, .txt or .json).
func unpack(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(2)
	if !bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		return br, nil
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}

	tr := tar.NewReader(bytes.NewReader(data))
	header, err := tr.Next()
	if err != nil {
		// Not a tar archive: plain gzip.
		return bytes.NewReader(data), nil
	}
	for {
		if header.Typeflag == tar.TypeReg && isDictName(header.Name) {
			return tr, nil
		}
		header, err = tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("no dictionary file found in downloaded archive")
		}
		if err != nil {
			return nil, fmt.Errorf("error reading tar archive: %w", err)
		}
	}
}

func isDictName(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".dict") || strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".json")
}
