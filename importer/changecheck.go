// importer/changecheck.go
package importer

import (
	"log"
	"os"

	"github.com/n4vhf/callbook/models"
)

// Decision says whether the upstream package looks identical to the one
// already loaded. Skip=false always means "run the full import".
type Decision struct {
	Skip   bool
	Reason string
}

// DecideChanged walks the skip signals in a fixed order, first match
// wins: detection disabled -> proceed; remote ETag equals the stored
// one -> skip; remote Last-Modified equals the stored one -> skip; a
// local ZIP exists and hashes to the stored digest -> skip; otherwise
// proceed.
//
// Comparisons are exact string matches and an empty value on either side
// never matches, so a first run (empty prior state) or a failed probe
// (zero meta) always proceeds. digestFile is only invoked when the
// header signals fail and both a local file and a stored digest exist.
func DecideChanged(enabled bool, remote models.RemoteMeta, localZip string, prior models.SourceState, digestFile func(string) (string, error)) Decision {
	if !enabled {
		return Decision{}
	}

	if remote.ETag != "" && remote.ETag == prior.SourceETag {
		return Decision{Skip: true, Reason: "remote etag matches last import (" + remote.ETag + ")"}
	}
	if remote.LastModified != "" && remote.LastModified == prior.SourceLastModified {
		return Decision{Skip: true, Reason: "remote last-modified matches last import (" + remote.LastModified + ")"}
	}

	if prior.SourceZipSHA256 == "" || localZip == "" {
		return Decision{}
	}
	if _, err := os.Stat(localZip); err != nil {
		return Decision{}
	}
	sum, err := digestFile(localZip)
	if err != nil {
		// Hash trouble is no reason to skip; fall through to a full run.
		log.Printf("WARN Importer: failed to hash local ZIP %s: %v", localZip, err)
		return Decision{}
	}
	if sum == prior.SourceZipSHA256 {
		return Decision{Skip: true, Reason: "local ZIP digest matches last import"}
	}

	return Decision{}
}
