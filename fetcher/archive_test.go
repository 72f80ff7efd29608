// fetcher/archive_test.go
package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractDat(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "l_amat.zip")
	writeZip(t, zipPath, map[string]string{
		"HD.dat":  "HD|1|||K1ABC|A||08/23/2016|08/23/2026|01/02/2020\n",
		"EN.dat":  "EN|1||||CL\n",
		"AM.dat":  "AM|1||||E\n",
		"counts":  "not a dat file\n",
	})

	extractDir := filepath.Join(dir, "extract")
	if err := ExtractDat(zipPath, extractDir); err != nil {
		t.Fatalf("ExtractDat failed: %v", err)
	}

	for _, name := range DatFiles {
		data, err := os.ReadFile(filepath.Join(extractDir, name))
		if err != nil {
			t.Fatalf("missing extracted %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s extracted empty", name)
		}
	}
}

func TestExtractDatMissingMember(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "l_amat.zip")
	writeZip(t, zipPath, map[string]string{
		"HD.dat": "HD|1\n",
		"EN.dat": "EN|1\n",
		// AM.dat deliberately absent
	})

	err := ExtractDat(zipPath, filepath.Join(dir, "extract"))
	if err == nil {
		t.Fatal("expected an error for a package missing AM.dat")
	}
	if !strings.Contains(err.Error(), "AM.dat") {
		t.Errorf("error should name the missing member, got %v", err)
	}
}

func TestNormalizeUTF8(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "EN.dat")

	// "José" in latin-1: the é is the single byte 0xE9.
	raw := []byte("EN|1|||K1ABC||L01234|Jos\xe9 Radio Club\n")
	if err := os.WriteFile(src, raw, 0644); err != nil {
		t.Fatal(err)
	}

	dst, err := NormalizeUTF8(src)
	if err != nil {
		t.Fatalf("NormalizeUTF8 failed: %v", err)
	}
	if dst != src+".utf8" {
		t.Errorf("dst = %q", dst)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "José Radio Club") {
		t.Errorf("latin-1 byte not re-encoded, got %q", got)
	}
	if strings.Count(string(got), "|") != strings.Count(string(raw), "|") {
		t.Error("re-encoding must not disturb the field delimiters")
	}
}
