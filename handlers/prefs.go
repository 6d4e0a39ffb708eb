package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"sala2/internal/auth"
	"sala2/models"
	"sala2/services/prefs"
)

// PrefsHandler handles cookie-consent preferences. Preferences are keyed by
// the anonymous client cookie, not the account, since consent is answered
// before any login.
type PrefsHandler struct {
	prefs *prefs.Service
}

// NewPrefsHandler creates a new prefs handler.
func NewPrefsHandler(prefsSvc *prefs.Service) *PrefsHandler {
	return &PrefsHandler{prefs: prefsSvc}
}

// PrefsResponse carries the preferences plus whether the client has answered
// the banner at all. answered=false drives the first-visit banner.
type PrefsResponse struct {
	Prefs    models.CookiePrefs `json:"prefs"`
	Answered bool               `json:"answered"`
}

// Get returns the stored preferences for this client.
func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID := auth.ClientID(w, r)
	p, answered := h.prefs.Get(clientID)
	writeJSON(w, http.StatusOK, PrefsResponse{Prefs: p, Answered: answered})
}

// Put stores the preferences for this client.
func (h *PrefsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var p models.CookiePrefs
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clientID := auth.ClientID(w, r)
	if err := h.prefs.Set(clientID, p); err != nil {
		log.Printf("[handlers] save prefs failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	writeJSON(w, http.StatusOK, PrefsResponse{Prefs: p, Answered: true})
}
