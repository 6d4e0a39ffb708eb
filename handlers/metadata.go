package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"sala2/models"
	"sala2/services/metadata"
)

// MetadataHandler exposes the catalog: browse feeds, search, detail pages,
// trailers, and filmographies.
type MetadataHandler struct {
	metadata *metadata.Service
}

// NewMetadataHandler creates a new metadata handler.
func NewMetadataHandler(metadataSvc *metadata.Service) *MetadataHandler {
	return &MetadataHandler{metadata: metadataSvc}
}

// Search runs the multi-page movie/tv/person search and returns the
// classified result set.
func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.metadata.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, metadata.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "query parameter q is required")
			return
		}
		if errors.Is(err, metadata.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "metadata source not configured")
			return
		}
		log.Printf("[handlers] search %q failed: %v", query, err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// MovieFeed serves one of the movie browse lists (popular, now_playing,
// upcoming, top_rated).
func (h *MetadataHandler) MovieFeed(w http.ResponseWriter, r *http.Request) {
	feed := mux.Vars(r)["feed"]

	page, err := h.metadata.MovieFeed(r.Context(), feed, pageParam(r))
	if err != nil {
		h.writeFeedError(w, "movie/"+feed, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// TVFeed serves one of the TV browse lists (popular, airing_today,
// on_the_air, top_rated).
func (h *MetadataHandler) TVFeed(w http.ResponseWriter, r *http.Request) {
	feed := mux.Vars(r)["feed"]

	page, err := h.metadata.TVFeed(r.Context(), feed, pageParam(r))
	if err != nil {
		h.writeFeedError(w, "tv/"+feed, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Trending serves the daily trending list for movies or TV.
func (h *MetadataHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType := models.MediaType(mux.Vars(r)["type"])
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeTV {
		writeError(w, http.StatusNotFound, "unknown media type")
		return
	}

	page, err := h.metadata.Trending(r.Context(), mediaType, pageParam(r))
	if err != nil {
		h.writeFeedError(w, "trending/"+string(mediaType), err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// InCinemas serves the window of movies currently in theatres.
func (h *MetadataHandler) InCinemas(w http.ResponseWriter, r *http.Request) {
	page, err := h.metadata.InCinemas(r.Context(), pageParam(r))
	if err != nil {
		h.writeFeedError(w, "in-cinemas", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ComingSoon serves upcoming theatrical releases.
func (h *MetadataHandler) ComingSoon(w http.ResponseWriter, r *http.Request) {
	page, err := h.metadata.ComingSoon(r.Context(), pageParam(r))
	if err != nil {
		h.writeFeedError(w, "coming-soon", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// MovieDetails serves a movie detail page bundle.
func (h *MetadataHandler) MovieDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idVar(w, r, "id")
	if !ok {
		return
	}

	details, err := h.metadata.MovieDetails(r.Context(), id)
	if err != nil {
		log.Printf("[handlers] movie details %d failed: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to load movie details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// TVDetails serves a TV detail page bundle.
func (h *MetadataHandler) TVDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idVar(w, r, "id")
	if !ok {
		return
	}

	details, err := h.metadata.TVDetails(r.Context(), id)
	if err != nil {
		log.Printf("[handlers] tv details %d failed: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to load tv details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// SeasonDetails serves one season with its episode list.
func (h *MetadataHandler) SeasonDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idVar(w, r, "id")
	if !ok {
		return
	}
	season, err := strconv.Atoi(mux.Vars(r)["season"])
	if err != nil || season < 0 {
		writeError(w, http.StatusBadRequest, "invalid season number")
		return
	}

	details, err := h.metadata.SeasonDetails(r.Context(), id, season)
	if err != nil {
		log.Printf("[handlers] season %d/%d failed: %v", id, season, err)
		writeError(w, http.StatusBadGateway, "failed to load season details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// PersonDetails serves a person with combined credits and external IDs.
func (h *MetadataHandler) PersonDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idVar(w, r, "id")
	if !ok {
		return
	}

	details, err := h.metadata.PersonDetails(r.Context(), id)
	if err != nil {
		log.Printf("[handlers] person details %d failed: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to load person details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Trailer serves the single best playable trailer for a movie or show.
// 404 means the title genuinely has none.
func (h *MetadataHandler) Trailer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType := models.MediaType(vars["type"])
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeTV {
		writeError(w, http.StatusNotFound, "unknown media type")
		return
	}
	id, ok := idVar(w, r, "id")
	if !ok {
		return
	}

	video, err := h.metadata.Trailer(r.Context(), mediaType, id)
	if err != nil {
		if errors.Is(err, metadata.ErrNoTrailer) {
			writeError(w, http.StatusNotFound, "no trailer available")
			return
		}
		log.Printf("[handlers] trailer %s/%d failed: %v", mediaType, id, err)
		writeError(w, http.StatusBadGateway, "failed to load trailer")
		return
	}
	writeJSON(w, http.StatusOK, video)
}

// Filmography serves a person's credits split into current and upcoming.
func (h *MetadataHandler) Filmography(w http.ResponseWriter, r *http.Request) {
	id, ok := idVar(w, r, "id")
	if !ok {
		return
	}

	filmography, err := h.metadata.Filmography(r.Context(), id)
	if err != nil {
		log.Printf("[handlers] filmography %d failed: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to load filmography")
		return
	}
	writeJSON(w, http.StatusOK, filmography)
}

func (h *MetadataHandler) writeFeedError(w http.ResponseWriter, feed string, err error) {
	if errors.Is(err, metadata.ErrUnknownFeed) {
		writeError(w, http.StatusNotFound, "unknown feed")
		return
	}
	if errors.Is(err, metadata.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "metadata source not configured")
		return
	}
	log.Printf("[handlers] feed %s failed: %v", feed, err)
	writeError(w, http.StatusBadGateway, "failed to load feed")
}

func idVar(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
