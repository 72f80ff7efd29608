// fetcher/archive.go
package fetcher

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DatFiles are the ULS members the import consumes. HD carries the
// license header, EN the entity/address facts, AM the operator class.
var DatFiles = []string{"HD.dat", "EN.dat", "AM.dat"}

// ExtractDat unpacks the three .dat members into extractDir, overwriting
// any previous extraction. A member missing from the archive is fatal:
// the package is malformed and nothing should be loaded from it.
func ExtractDat(zipPath, extractDir string) error {
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		return fmt.Errorf("failed to create extract dir %s: %w", extractDir, err)
	}

	log.Printf("Fetcher: extracting %s -> %s", zipPath, extractDir)
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open zip %s: %w", zipPath, err)
	}
	defer zr.Close()

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[filepath.Base(f.Name)] = f
	}

	for _, name := range DatFiles {
		member, ok := members[name]
		if !ok {
			return fmt.Errorf("missing %s in %s", name, zipPath)
		}
		if err := extractMember(member, filepath.Join(extractDir, name)); err != nil {
			return err
		}
	}

	log.Println("Fetcher: extract complete")
	return nil
}

func extractMember(member *zip.File, dest string) error {
	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip member %s: %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to extract %s: %w", member.Name, err)
	}
	return nil
}

// NormalizeUTF8 re-encodes a .dat file from latin-1 to UTF-8 and writes it
// next to the source with a .utf8 suffix, returning the new path. FCC data
// predates UTF-8; latin-1 decoding never fails and bad bytes become
// replacement runes instead of aborting a multi-million-row load.
func NormalizeUTF8(src string) (string, error) {
	dst := src + ".utf8"
	log.Printf("Fetcher: re-encoding %s -> %s", filepath.Base(src), filepath.Base(dst))

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}

	decoded := transform.NewReader(in, charmap.ISO8859_1.NewDecoder())
	if _, err := io.Copy(out, decoded); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to re-encode %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return dst, nil
}
