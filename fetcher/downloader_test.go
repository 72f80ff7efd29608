// fetcher/downloader_test.go
package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestProbeReturnsHeaderMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("probe should use HEAD, got %s", r.Method)
		}
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Last-Modified", "Sun, 23 Aug 2026 02:00:00 GMT")
		w.Header().Set("Content-Length", "8")
	}))
	defer srv.Close()

	meta := Probe(context.Background(), srv.URL, time.Second)
	if meta.ETag != `"abc123"` {
		t.Errorf("etag = %q", meta.ETag)
	}
	if meta.LastModified != "Sun, 23 Aug 2026 02:00:00 GMT" {
		t.Errorf("last-modified = %q", meta.LastModified)
	}
	if meta.ContentLength != 8 {
		t.Errorf("content-length = %d", meta.ContentLength)
	}
}

func TestProbeFailureYieldsZeroMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	srv.Close() // connection refused from here on

	meta := Probe(context.Background(), srv.URL, time.Second)
	if meta.ETag != "" || meta.LastModified != "" || meta.ContentLength != 0 {
		t.Fatalf("failed probe should yield the zero value, got %+v", meta)
	}
}

func TestDownloadWritesAtomicallyAndHashes(t *testing.T) {
	body := "pipe|delimited|payload\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "l_amat.zip")
	sum, n, err := Download(context.Background(), srv.URL, dest, 0, time.Second, 0)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if n != int64(len(body)) {
		t.Errorf("bytes = %d, want %d", n, len(body))
	}

	want := sha256.Sum256([]byte(body))
	if sum != hex.EncodeToString(want[:]) {
		t.Errorf("sha256 = %s", sum)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if string(got) != body {
		t.Errorf("destination content = %q", got)
	}

	// The temp file must be gone after the rename.
	entries, _ := os.ReadDir(filepath.Dir(dest))
	for _, e := range entries {
		if strings.Contains(e.Name(), ".partial") {
			t.Errorf("leftover temp file %q", e.Name())
		}
	}
}

func TestDownloadSkipsWhenLargeFileExists(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "l_amat.zip")
	existing := "already-downloaded-package"
	if err := os.WriteFile(dest, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	sum, n, err := Download(context.Background(), srv.URL, dest, 10, time.Second, 0)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if requests != 0 {
		t.Fatal("download should be skipped when a large file already exists")
	}
	if n != int64(len(existing)) {
		t.Errorf("bytes = %d, want %d", n, len(existing))
	}
	want := sha256.Sum256([]byte(existing))
	if sum != hex.EncodeToString(want[:]) {
		t.Errorf("sha256 of existing file = %s", sum)
	}
}

func TestDownloadFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "l_amat.zip")
	if _, _, err := Download(context.Background(), srv.URL, dest, 0, time.Second, 0); err == nil {
		t.Fatal("expected an error on 404")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("no destination file may exist after a failed download")
	}
}

func TestFileSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("zipbytes"), 0644); err != nil {
		t.Fatal(err)
	}
	want := sha256.Sum256([]byte("zipbytes"))
	got, err := FileSHA256(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != hex.EncodeToString(want[:]) {
		t.Errorf("FileSHA256 = %s", got)
	}
}
