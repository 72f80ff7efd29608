// importer/run.go
package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/n4vhf/callbook/config"
	"github.com/n4vhf/callbook/database"
	"github.com/n4vhf/callbook/fetcher"
	"github.com/n4vhf/callbook/models"
	"github.com/n4vhf/callbook/state"
)

// Outcome is the single terminal result of a run. Success and both skip
// variants map to exit code 0; only Failed carries an error.
type Outcome struct {
	Result     models.RunResult
	SkipReason string
	Err        error
}

// warehouse is the slice of database.DB the run sequence needs.
type warehouse interface {
	TryLock(ctx context.Context, name string) (release func(), acquired bool, err error)
	ApplySchema(ctx context.Context, schemaPath string) error
	LoadStaging(ctx context.Context, kind database.SourceKind, data io.Reader) error
	MergeAll(ctx context.Context) error
	VerifyImport(ctx context.Context) (*database.ImportDiagnostics, error)
}

type stateStore interface {
	Load(job string) (models.SourceState, error)
	Save(job string, rec models.SourceState) error
}

// Runner sequences one import: lock, change check, schema, download,
// extract, load, merge, verify, persist. The fetch steps are plain
// function fields so tests can swap them without a network or a ZIP.
type Runner struct {
	cfg    config.Config
	db     warehouse
	states stateStore

	probe     func(ctx context.Context, url string, timeout time.Duration) models.RemoteMeta
	fetch     func(ctx context.Context, url, dest string, minBytes int64, timeout time.Duration, expectedLength int64) (string, int64, error)
	extract   func(zipPath, extractDir string) error
	normalize func(src string) (string, error)
	digest    func(path string) (string, error)
	now       func() time.Time
}

func NewRunner(cfg config.Config, db *database.DB, states *state.Store) *Runner {
	return &Runner{
		cfg:       cfg,
		db:        db,
		states:    states,
		probe:     fetcher.Probe,
		fetch:     fetcher.Download,
		extract:   fetcher.ExtractDat,
		normalize: fetcher.NormalizeUTF8,
		digest:    fetcher.FileSHA256,
		now:       time.Now,
	}
}

// lockName is the advisory lock for one logical job. One name per job:
// two jobs with different names may import concurrently.
func (r *Runner) lockName() string {
	return "uls_import:" + r.cfg.Importer.JobName
}

// Run executes one import pass. Every path out of here persists the run
// record (best effort) and releases the lock if it was taken.
func (r *Runner) Run(ctx context.Context) Outcome {
	job := r.cfg.Importer.JobName
	started := r.now().UTC().Truncate(time.Second)
	log.Printf("Importer: starting run for job %q", job)

	prior, err := r.states.Load(job)
	if err != nil {
		// A broken state record must not stop the import; it just means
		// no skip signal will match and the run is treated as a first run.
		log.Printf("WARN Importer: failed to load prior state for %q: %v", job, err)
		prior = models.SourceState{}
	}

	if r.cfg.Importer.UseLock {
		release, acquired, err := r.db.TryLock(ctx, r.lockName())
		if err != nil {
			return r.finish(prior, started, Outcome{Result: models.RunFailed, Err: fmt.Errorf("lock: %w", err)}, models.SourceState{})
		}
		if !acquired {
			log.Printf("Importer: lock %q already held, skipping run", r.lockName())
			return r.finish(prior, started, Outcome{
				Result:     models.RunSkippedLocked,
				SkipReason: "another import run holds " + r.lockName(),
			}, models.SourceState{})
		}
		defer release()
	}

	// Metadata-only probe. Runs even when change detection is off so a
	// successful import can record the upstream identity it loaded.
	meta := r.probe(ctx, r.cfg.Source.ZipURL, r.cfg.Importer.ProbeTimeout)

	decision := DecideChanged(r.cfg.Importer.CheckChanged, meta, r.cfg.ZipPath(), prior, r.digest)
	if decision.Skip {
		log.Printf("Importer: upstream unchanged, skipping run (%s)", decision.Reason)
		return r.finish(prior, started, Outcome{
			Result:     models.RunSkippedUnchanged,
			SkipReason: decision.Reason,
		}, models.SourceState{})
	}

	if err := r.db.ApplySchema(ctx, r.cfg.Paths.SchemaPath); err != nil {
		return r.finish(prior, started, Outcome{Result: models.RunFailed, Err: fmt.Errorf("schema: %w", err)}, models.SourceState{})
	}

	sum, size, err := r.fetch(ctx, r.cfg.Source.ZipURL, r.cfg.ZipPath(),
		r.cfg.Importer.MinZipBytes, r.cfg.Importer.DownloadTimeout, meta.ContentLength)
	if err != nil {
		return r.finish(prior, started, Outcome{Result: models.RunFailed, Err: fmt.Errorf("download: %w", err)}, models.SourceState{})
	}

	if err := r.extract(r.cfg.ZipPath(), r.cfg.ExtractDir()); err != nil {
		return r.finish(prior, started, Outcome{Result: models.RunFailed, Err: fmt.Errorf("extract: %w", err)}, models.SourceState{})
	}

	for _, kind := range []database.SourceKind{database.KindHD, database.KindEN, database.KindAM} {
		if err := r.loadOne(ctx, kind); err != nil {
			return r.finish(prior, started, Outcome{Result: models.RunFailed, Err: err}, models.SourceState{})
		}
	}

	if err := r.db.MergeAll(ctx); err != nil {
		return r.finish(prior, started, Outcome{Result: models.RunFailed, Err: fmt.Errorf("merge: %w", err)}, models.SourceState{})
	}

	// Diagnostics only: a verification hiccup never fails a run whose
	// load and merge already landed.
	if diag, err := r.db.VerifyImport(ctx); err != nil {
		log.Printf("WARN Importer: verification failed: %v", err)
	} else {
		diag.LogDiagnostics()
	}

	refreshed := r.now().UTC().Truncate(time.Second)
	fresh := models.SourceState{
		LocalDataUpdatedAt: &refreshed,
		SourceURL:          r.cfg.Source.ZipURL,
		SourceETag:         meta.ETag,
		SourceLastModified: meta.LastModified,
		SourceZipSHA256:    sum,
		SourceZipBytes:     size,
	}
	return r.finish(prior, started, Outcome{Result: models.RunSuccess}, fresh)
}

// loadOne re-encodes one .dat file and bulk loads it into staging.
func (r *Runner) loadOne(ctx context.Context, kind database.SourceKind) error {
	src := filepath.Join(r.cfg.ExtractDir(), kind.DatFile())
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("extract: missing %s: %w", src, err)
	}

	normalized, err := r.normalize(src)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	f, err := os.Open(normalized)
	if err != nil {
		return fmt.Errorf("load: failed to open %s: %w", normalized, err)
	}
	defer f.Close()

	if err := r.db.LoadStaging(ctx, kind, f); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

// finish stamps the attempt times onto the outcome's record, merges it
// over the prior state with the sticky-field rules, and persists both
// state copies. Persistence trouble is a warning: the run's primary
// outcome already happened and must be reported as-is.
func (r *Runner) finish(prior models.SourceState, started time.Time, out Outcome, fresh models.SourceState) Outcome {
	finished := r.now().UTC().Truncate(time.Second)
	fresh.LastRunStartedAt = &started
	fresh.LastRunFinishedAt = &finished
	fresh.LastRunResult = out.Result
	fresh.LastRunSkipReason = out.SkipReason

	next := state.Merge(prior, fresh)
	if err := r.states.Save(r.cfg.Importer.JobName, next); err != nil {
		log.Printf("WARN Importer: failed to persist run state: %v", err)
	}

	switch out.Result {
	case models.RunFailed:
		log.Printf("Importer: run failed result=%s err=%v", out.Result, out.Err)
	case models.RunSuccess:
		log.Printf("Importer: run complete result=%s sha256=%s bytes=%d", out.Result, next.SourceZipSHA256, next.SourceZipBytes)
	default:
		log.Printf("Importer: run complete result=%s reason=%q", out.Result, out.SkipReason)
	}
	return out
}
