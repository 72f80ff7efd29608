// handlers/handlers.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/n4vhf/callbook/config"
	"github.com/n4vhf/callbook/importer"
	"github.com/n4vhf/callbook/models"
)

// callbookReader is the read-side slice of database.DB the API uses.
type callbookReader interface {
	LookupCallsign(ctx context.Context, callsign string) ([]models.CallbookEntry, error)
	ExportCallbook(ctx context.Context, limit int) ([]models.CallbookEntry, error)
	Ping() error
}

type stateReader interface {
	Load(job string) (models.SourceState, error)
}

type importRunner interface {
	Run(ctx context.Context) importer.Outcome
}

// Handler carries the API's collaborators. Everything is handed in at
// construction; handlers never read globals.
type Handler struct {
	cfg    config.Config
	db     callbookReader
	states stateReader
	runner importRunner
}

func New(cfg config.Config, db callbookReader, states stateReader, runner importRunner) *Handler {
	return &Handler{cfg: cfg, db: db, states: states, runner: runner}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/xml.php", h.LookupXMLHandler)
	mux.HandleFunc("/api/health", h.HealthHandler)
	mux.HandleFunc("/api/admin/import-status", h.ImportStatusHandler)
	mux.HandleFunc("/api/admin/run-import", h.RunImportHandler)
	mux.HandleFunc("/api/admin/check-upstream", h.CheckUpstreamHandler)
	mux.HandleFunc("/api/admin/export-callbook", h.ExportCallbookHandler)
}

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// HealthHandler reports service and database health for orchestration.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		log.Printf("Health check failed: DB ping error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "database connection error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "callbook backend is healthy"})
}
