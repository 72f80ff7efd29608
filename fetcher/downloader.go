// fetcher/downloader.go
package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/n4vhf/callbook/models"
)

// Probe issues a HEAD request against the package URL and returns whatever
// change-identity metadata the server offers. Probing is best-effort: any
// network or protocol failure returns the zero RemoteMeta so the run can
// still proceed to a full download.
func Probe(ctx context.Context, url string, timeout time.Duration) models.RemoteMeta {
	client := http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		log.Printf("WARN Fetcher: failed to build HEAD request for %s: %v", url, err)
		return models.RemoteMeta{}
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("WARN Fetcher: HEAD %s failed: %v", url, err)
		return models.RemoteMeta{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("WARN Fetcher: HEAD %s returned status %d", url, resp.StatusCode)
		return models.RemoteMeta{}
	}

	meta := models.RemoteMeta{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}
	if resp.ContentLength > 0 {
		meta.ContentLength = resp.ContentLength
	}
	return meta
}

// Download streams the package to destPath and returns its SHA-256 hex
// digest and size. The body lands in a temp file in the destination
// directory and is renamed into place only once fully written, so a
// concurrent reader never observes a partial file.
//
// If a file already exists at destPath and is larger than minBytes, the
// download is skipped and the existing file is hashed instead. That is a
// cost-control heuristic for a 150MB+ weekly package, not a freshness
// guarantee; pair it with change detection when staleness matters.
func Download(ctx context.Context, url, destPath string, minBytes int64, timeout time.Duration, expectedLength int64) (string, int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	if fi, err := os.Stat(destPath); err == nil && minBytes > 0 && fi.Size() > minBytes {
		log.Printf("Fetcher: ZIP exists, skipping download: %s (%d bytes)", destPath, fi.Size())
		sum, err := FileSHA256(destPath)
		if err != nil {
			return "", 0, err
		}
		return sum, fi.Size(), nil
	}

	log.Printf("Fetcher: downloading %s", url)
	client := http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to build GET request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("failed to download %s: received status code %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".partial*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file for %s: %w", destPath, err)
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to write download to %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close temp file %s: %w", tmp.Name(), err)
	}

	if expectedLength > 0 && written != expectedLength {
		// Upstream metadata is routinely stale or absent; note it and move on.
		log.Printf("WARN Fetcher: downloaded %d bytes, probe reported %d", written, expectedLength)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return "", 0, fmt.Errorf("failed to move download into place at %s: %w", destPath, err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	log.Printf("Fetcher: downloaded %s (%d bytes, sha256=%s)", destPath, written, sum)
	return sum, written, nil
}

// FileSHA256 hashes an existing file on disk.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
