package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/batch"
	"github.com/lehigh-university-libraries/imgtranslate/internal/config"
	"github.com/lehigh-university-libraries/imgtranslate/internal/images"
	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/settings"
)

type Handler struct {
	orchestrator *batch.Orchestrator
	fetcher      *images.Fetcher

	// env is the configuration before user settings are applied
	env          config.Config
	settingsPath string

	// settings mirrors the file; it is read once at startup
	settingsMu sync.Mutex
	settings   settings.Settings

	now func() time.Time
}

func New(orchestrator *batch.Orchestrator, env config.Config, settingsPath string, current settings.Settings) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		fetcher:      images.NewFetcher(),
		env:          env,
		settingsPath: settingsPath,
		settings:     current,
		now:          time.Now,
	}
}

// Routes registers every API endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.HandleUpload)
	mux.HandleFunc("GET /api/items", h.HandleListItems)
	mux.HandleFunc("DELETE /api/items", h.HandleClearItems)
	mux.HandleFunc("GET /api/items/{id}", h.HandleGetItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.HandleRemoveItem)
	mux.HandleFunc("POST /api/items/{id}/retry", h.HandleRetryItem)
	mux.HandleFunc("GET /api/items/{id}/download", h.HandleDownload)
	mux.HandleFunc("GET /api/items/{id}/image", h.HandleItemImage)
	mux.HandleFunc("GET /api/settings", h.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.HandlePutSettings)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "code", code)
	}
	http.Error(w, message, code)
}

// Item helpers
func (h *Handler) getItemOrError(w http.ResponseWriter, r *http.Request) (models.BatchItem, bool) {
	item, exists := h.orchestrator.Item(r.PathValue("id"))
	if !exists {
		h.writeError(w, "Item not found", http.StatusNotFound)
		return models.BatchItem{}, false
	}
	return item, true
}
