package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"sala2/internal/auth"
	"sala2/models"
	"sala2/services/collections"
)

// CollectionsHandler handles the favorites/followed endpoints. All routes
// sit behind the session middleware.
type CollectionsHandler struct {
	collections *collections.Service
}

// NewCollectionsHandler creates a new collections handler.
func NewCollectionsHandler(collectionsSvc *collections.Service) *CollectionsHandler {
	return &CollectionsHandler{collections: collectionsSvc}
}

// Get returns both lists for the logged-in user.
func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userCollections, err := h.collections.Get(auth.GetAccountID(r))
	if err != nil {
		if errors.Is(err, collections.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "login_required")
			return
		}
		log.Printf("[handlers] load collections failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load collections")
		return
	}
	writeJSON(w, http.StatusOK, userCollections)
}

// ToggleMovie adds or removes a movie from the user's favorites.
func (h *CollectionsHandler) ToggleMovie(w http.ResponseWriter, r *http.Request) {
	var movie models.MovieSummary
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := h.collections.ToggleMovie(auth.GetAccountID(r), movie)
	if err != nil {
		h.writeToggleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inCollection": added})
}

// ToggleTV adds or removes a show from the user's followed list.
func (h *CollectionsHandler) ToggleTV(w http.ResponseWriter, r *http.Request) {
	var show models.TVSummary
	if err := json.NewDecoder(r.Body).Decode(&show); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := h.collections.ToggleTV(auth.GetAccountID(r), show)
	if err != nil {
		h.writeToggleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inCollection": added})
}

func (h *CollectionsHandler) writeToggleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collections.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "login_required")
	case errors.Is(err, collections.ErrInvalidMovie), errors.Is(err, collections.ErrInvalidShow):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[handlers] toggle collection failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update collection")
	}
}
