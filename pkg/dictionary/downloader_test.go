package dictionary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestEnsureDictionary_LocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmudict.dict")
	if err := os.WriteFile(path, []byte("CAT  K AE1 T\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// An unreachable URL proves no download is attempted.
	if err := EnsureDictionary(context.Background(), path, "http://127.0.0.1:1/never", quiet); err != nil {
		t.Fatalf("EnsureDictionary failed with local file: %v", err)
	}
}

func tarGz(t *testing.T, name string, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	if err := tw.WriteHeader(&tar.Header{Name: "README", Mode: 0o644, Size: 2, Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	tw.Write([]byte("hi"))
	if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	tw.Write(body)
	tw.Close()
	gw.Close()
	return buf.Bytes()
}

func TestEnsureDictionary_Download(t *testing.T) {
	body := []byte("CAT  K AE1 T\nHAT  HH AE1 T\n")
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write(body)
	gw.Close()

	payloads := map[string][]byte{
		"/plain.dict":  body,
		"/dict.gz":     gz.Bytes(),
		"/dict.tar.gz": tarGz(t, "cmudict/cmudict.dict", body),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(p)
	}))
	defer srv.Close()

	for name := range payloads {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "cmudict.dict")
			if err := EnsureDictionary(context.Background(), path, srv.URL+name, quiet); err != nil {
				t.Fatalf("ensure: %v", err)
			}
			d, err := Load(path)
			if err != nil {
				t.Fatalf("load downloaded: %v", err)
			}
			if _, ok := d.Lookup("hat"); !ok || d.Len() != 2 {
				t.Fatalf("downloaded dictionary incomplete: len=%d", d.Len())
			}
		})
	}

	t.Run("not found", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cmudict.dict")
		if err := EnsureDictionary(context.Background(), path, srv.URL+"/missing", quiet); err == nil {
			t.Fatalf("expected error for 404")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("failed download must not leave a file behind")
		}
	})
}

func TestEnsureDictionary_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "cmudict.dict")
	if err := EnsureDictionary(ctx, path, "http://127.0.0.1:1/x", quiet); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
