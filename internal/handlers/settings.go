package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/imgtranslate/internal/settings"
)

func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	h.settingsMu.Lock()
	s := h.settings
	h.settingsMu.Unlock()
	h.writeJSON(w, s.Masked())
}

// HandlePutSettings replaces all four settings, saves them and applies them
// to new translation attempts. A value equal to the masked form of the
// stored one keeps the stored value.
func (h *Handler) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	var incoming settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.settingsMu.Lock()
	defer h.settingsMu.Unlock()

	current := h.settings
	incoming.GeminiAPIKey = keepMasked(incoming.GeminiAPIKey, current.GeminiAPIKey)
	incoming.GeminiPremiumAPIKey = keepMasked(incoming.GeminiPremiumAPIKey, current.GeminiPremiumAPIKey)
	incoming.DeepSeekAPIKey = keepMasked(incoming.DeepSeekAPIKey, current.DeepSeekAPIKey)

	if err := settings.Save(h.settingsPath, incoming); err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.settings = incoming
	h.orchestrator.SetConfig(h.env.WithSettings(incoming))
	slog.Info("Settings saved", "path", h.settingsPath)
	h.writeJSON(w, incoming.Masked())
}

func keepMasked(incoming, current string) string {
	if incoming != "" && incoming == settings.Mask(current) {
		return current
	}
	return incoming
}
