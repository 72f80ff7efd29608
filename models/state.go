// models/state.go
package models

import "time"

// RunResult is the terminal outcome of one import run. Every run ends in
// exactly one of these; callers can switch over them exhaustively.
type RunResult string

const (
	RunSuccess          RunResult = "success"
	RunSkippedLocked    RunResult = "skipped_locked"
	RunSkippedUnchanged RunResult = "skipped_unchanged"
	RunFailed           RunResult = "failed"
)

// SourceState is the durable record of one import job: when the last run
// happened and how it ended, when the local data was last actually
// refreshed, and which upstream package version the database currently
// reflects. It is read at the start of a run and written back once at the
// end.
//
// The source_* fields are sticky: a failed or skipped run never erases a
// previously known-good value. LocalDataUpdatedAt only moves forward, and
// only on a run that really refreshed the tables.
type SourceState struct {
	LastRunStartedAt  *time.Time `json:"last_run_started_at,omitempty"`
	LastRunFinishedAt *time.Time `json:"last_run_finished_at,omitempty"`
	LastRunResult     RunResult  `json:"last_run_result,omitempty"`
	LastRunSkipReason string     `json:"last_run_skip_reason,omitempty"`

	LocalDataUpdatedAt *time.Time `json:"local_data_updated_at,omitempty"`

	SourceURL  string `json:"source_url,omitempty"`
	SourceETag string `json:"source_etag,omitempty"`
	// SourceLastModified keeps the raw Last-Modified header value; change
	// detection compares it as an exact string.
	SourceLastModified string `json:"source_last_modified_at,omitempty"`
	SourceZipSHA256    string `json:"source_zip_sha256,omitempty"`
	SourceZipBytes     int64  `json:"source_zip_bytes,omitempty"`
}

// RemoteMeta is what a metadata-only probe of the upstream URL returns.
// A failed probe yields the zero value, which never matches anything.
type RemoteMeta struct {
	ETag          string
	LastModified  string
	ContentLength int64
}

// UpdatePageInfo is the posted freshness text scraped from the FCC
// downloads page. Advisory only; the import never branches on it.
type UpdatePageInfo struct {
	RawText     string    `json:"raw_text"`
	LastUpdated time.Time `json:"last_updated"`
	CheckedAt   time.Time `json:"checked_at"`
}
