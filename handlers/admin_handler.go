// handlers/admin_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jszwec/csvutil"

	"github.com/n4vhf/callbook/fetcher"
	"github.com/n4vhf/callbook/models"
)

// ImportStatusHandler returns the durable state record for the import
// job: last run outcome, data freshness, and the upstream package
// identity currently loaded.
func (h *Handler) ImportStatusHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := h.states.Load(h.cfg.Importer.JobName)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to read import state")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// RunImportHandler triggers one synchronous import pass. The importer's
// own lock keeps this safe against an overlapping cron run.
func (h *Handler) RunImportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	// Deliberately not the request context: a client that gives up on the
	// long response must not abort a half-done import.
	out := h.runner.Run(context.Background())

	payload := map[string]string{"result": string(out.Result)}
	if out.SkipReason != "" {
		payload["skip_reason"] = out.SkipReason
	}
	if out.Err != nil {
		payload["error"] = out.Err.Error()
		respondWithJSON(w, http.StatusInternalServerError, payload)
		return
	}
	respondWithJSON(w, http.StatusOK, payload)
}

// CheckUpstreamHandler probes the package URL and scrapes the FCC
// downloads page, returning both signals for operators. It changes
// nothing.
func (h *Handler) CheckUpstreamHandler(w http.ResponseWriter, r *http.Request) {
	meta := fetcher.Probe(r.Context(), h.cfg.Source.ZipURL, h.cfg.Importer.ProbeTimeout)

	payload := map[string]interface{}{
		"zip_url":        h.cfg.Source.ZipURL,
		"etag":           meta.ETag,
		"last_modified":  meta.LastModified,
		"content_length": meta.ContentLength,
	}

	if page, err := fetcher.CheckUpdatePage(r.Context(), h.cfg.Source.UpdatePage, h.cfg.Importer.ProbeTimeout); err != nil {
		payload["update_page_error"] = err.Error()
	} else {
		payload["update_page"] = page
	}

	respondWithJSON(w, http.StatusOK, payload)
}

// ExportCallbookHandler dumps view rows as CSV for offline use:
// GET /api/admin/export-callbook?limit=1000
func (h *Handler) ExportCallbookHandler(w http.ResponseWriter, r *http.Request) {
	limit := 1000
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.db.ExportCallbook(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to export callbook rows")
		return
	}
	if entries == nil {
		entries = []models.CallbookEntry{}
	}

	data, err := csvutil.Marshal(entries)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to marshal CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="callbook.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
