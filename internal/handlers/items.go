package handlers

import (
	"errors"
	"net/http"

	"github.com/lehigh-university-libraries/imgtranslate/internal/batch"
	"github.com/lehigh-university-libraries/imgtranslate/internal/export"
	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
)

func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.orchestrator.Items())
}

func (h *Handler) HandleClearItems(w http.ResponseWriter, r *http.Request) {
	n := h.orchestrator.Clear()
	h.writeJSON(w, map[string]int{"removed": n})
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.getItemOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, item)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.Remove(r.PathValue("id")); err != nil {
		if errors.Is(err, batch.ErrNotFound) {
			h.writeError(w, "Item not found", http.StatusNotFound)
			return
		}
		h.writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRetryItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.orchestrator.Retry(id)
	switch {
	case err == nil:
	case errors.Is(err, batch.ErrNotFound):
		h.writeError(w, "Item not found", http.StatusNotFound)
		return
	case errors.Is(err, batch.ErrInFlight):
		h.writeError(w, "Item is already being analyzed", http.StatusConflict)
		return
	case errors.Is(err, batch.ErrNotRetryable):
		h.writeError(w, "Item has already been translated", http.StatusConflict)
		return
	case providers.KindOf(err) == providers.KindMissingCredential:
		// the item itself carries the error and credentials_required flag
	default:
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, _ := h.orchestrator.Item(id)
	h.writeJSONStatus(w, http.StatusAccepted, item)
}

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	item, ok := h.getItemOrError(w, r)
	if !ok {
		return
	}
	if !item.Terminal() {
		h.writeError(w, "Item has not finished translating", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(item)+`"`)
	_, _ = w.Write([]byte(export.Text(item, h.now())))
}

// HandleItemImage serves the stored image so clients can render previews
// before translation finishes.
func (h *Handler) HandleItemImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.getItemOrError(w, r)
	if !ok {
		return
	}
	serveImage(w, item.Image)
}

func serveImage(w http.ResponseWriter, img models.Image) {
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(img.Data)
}
