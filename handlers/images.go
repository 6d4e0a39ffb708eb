package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"

	"sala2/services/metadata"
)

// ImagesHandler proxies poster and profile artwork from the image CDN so the
// client never talks to it directly.
type ImagesHandler struct {
	baseURL string
	httpc   *http.Client
}

// NewImagesHandler creates an images proxy. An empty baseURL uses the
// default CDN; a nil client gets a sane timeout.
func NewImagesHandler(baseURL string, httpc *http.Client) *ImagesHandler {
	if baseURL == "" {
		baseURL = metadata.DefaultImageBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 20 * time.Second}
	}
	return &ImagesHandler{baseURL: baseURL, httpc: httpc}
}

// Serve streams one image, validating the size segment against the fixed
// enum so the proxy cannot be pointed at arbitrary CDN paths.
func (h *ImagesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	size := vars["size"]
	path := vars["path"]

	if !metadata.IsValidImageSize(size) {
		writeError(w, http.StatusNotFound, "unknown image size")
		return
	}

	imageURL := metadata.ImageURL(h.baseURL, size, path)
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, "invalid image path")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build image request")
		return
	}

	resp, err := h.httpc.Do(req)
	if err != nil {
		log.Printf("[handlers] image fetch %s failed: %v", imageURL, err)
		writeError(w, http.StatusBadGateway, "failed to fetch image")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	// Sniff the first bytes when the CDN omits the content type.
	contentType := resp.Header.Get("Content-Type")
	var head []byte
	if contentType == "" || contentType == "application/octet-stream" {
		head = make([]byte, 3072)
		n, _ := io.ReadFull(resp.Body, head)
		head = head[:n]
		contentType = mimetype.Detect(head).String()
	}

	w.Header().Set("Content-Type", contentType)
	if cl := resp.ContentLength; cl > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(cl, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if len(head) > 0 {
		if _, err := w.Write(head); err != nil {
			return
		}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("[handlers] image stream %s interrupted: %v", imageURL, err)
	}
}
