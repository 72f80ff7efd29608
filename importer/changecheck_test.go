// importer/changecheck_test.go
package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/n4vhf/callbook/models"
)

func noDigest(t *testing.T) func(string) (string, error) {
	t.Helper()
	return func(path string) (string, error) {
		t.Fatalf("digest should not be computed for %s", path)
		return "", nil
	}
}

func TestDecideChangedDisabled(t *testing.T) {
	prior := models.SourceState{SourceETag: "abc"}
	remote := models.RemoteMeta{ETag: "abc"}

	dec := DecideChanged(false, remote, "", prior, noDigest(t))
	if dec.Skip {
		t.Fatal("disabled detection must always proceed")
	}
}

func TestDecideChangedETagMatch(t *testing.T) {
	prior := models.SourceState{SourceETag: "abc"}
	remote := models.RemoteMeta{ETag: "abc", LastModified: "whatever"}

	dec := DecideChanged(true, remote, "", prior, noDigest(t))
	if !dec.Skip {
		t.Fatal("matching etag should skip")
	}
	if dec.Reason == "" {
		t.Error("skip should carry a reason")
	}
}

func TestDecideChangedLastModifiedMatch(t *testing.T) {
	prior := models.SourceState{
		SourceETag:         "old",
		SourceLastModified: "Sun, 23 Aug 2026 02:00:00 GMT",
	}
	remote := models.RemoteMeta{
		ETag:         "new",
		LastModified: "Sun, 23 Aug 2026 02:00:00 GMT",
	}

	dec := DecideChanged(true, remote, "", prior, noDigest(t))
	if !dec.Skip {
		t.Fatal("matching last-modified should skip")
	}
}

func TestDecideChangedEmptyNeverMatches(t *testing.T) {
	// First run: prior state empty, probe empty. Nothing may match.
	dec := DecideChanged(true, models.RemoteMeta{}, "", models.SourceState{}, noDigest(t))
	if dec.Skip {
		t.Fatal("empty values must never count as a match")
	}

	// Failed probe against a populated prior record must also proceed.
	prior := models.SourceState{SourceETag: "abc", SourceLastModified: "Sun, 23 Aug 2026 02:00:00 GMT"}
	dec = DecideChanged(true, models.RemoteMeta{}, "", prior, noDigest(t))
	if dec.Skip {
		t.Fatal("zero probe result must never count as a match")
	}
}

func TestDecideChangedLocalDigestMatch(t *testing.T) {
	zip := filepath.Join(t.TempDir(), "l_amat.zip")
	if err := os.WriteFile(zip, []byte("zipbytes"), 0644); err != nil {
		t.Fatal(err)
	}

	prior := models.SourceState{SourceETag: "old", SourceZipSHA256: "match-me"}
	remote := models.RemoteMeta{ETag: "new"}

	dec := DecideChanged(true, remote, zip, prior, func(string) (string, error) {
		return "match-me", nil
	})
	if !dec.Skip {
		t.Fatal("matching local digest should skip")
	}

	dec = DecideChanged(true, remote, zip, prior, func(string) (string, error) {
		return "different", nil
	})
	if dec.Skip {
		t.Fatal("differing local digest should proceed")
	}
}

func TestDecideChangedNoLocalArtifact(t *testing.T) {
	prior := models.SourceState{SourceZipSHA256: "match-me"}
	missing := filepath.Join(t.TempDir(), "l_amat.zip")

	dec := DecideChanged(true, models.RemoteMeta{}, missing, prior, noDigest(t))
	if dec.Skip {
		t.Fatal("missing local artifact should proceed without hashing")
	}
}

func TestDecideChangedNoStoredDigest(t *testing.T) {
	zip := filepath.Join(t.TempDir(), "l_amat.zip")
	if err := os.WriteFile(zip, []byte("zipbytes"), 0644); err != nil {
		t.Fatal(err)
	}

	dec := DecideChanged(true, models.RemoteMeta{}, zip, models.SourceState{}, noDigest(t))
	if dec.Skip {
		t.Fatal("no stored digest should proceed without hashing")
	}
}
