package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sala2/services/metadata"
)

// fakeMetadataTransport serves canned metadata-source responses by path.
type fakeMetadataTransport struct {
	responses map[string]string
}

func (t *fakeMetadataTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	for prefix, body := range t.responses {
		if strings.HasPrefix(r.URL.Path, prefix) {
			rec := httptest.NewRecorder()
			rec.Header().Set("Content-Type", "application/json")
			rec.WriteString(body)
			return rec.Result(), nil
		}
	}
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusNotFound)
	rec.WriteString(`{"status_message":"not found"}`)
	return rec.Result(), nil
}

func newMetadataRouter(t *testing.T, responses map[string]string) *mux.Router {
	t.Helper()
	httpc := &http.Client{Transport: &fakeMetadataTransport{responses: responses}}
	svc := metadata.NewService("test-key", "es-ES", "ES", "/cache", 24, afero.NewMemMapFs(), httpc)

	h := NewMetadataHandler(svc)
	r := mux.NewRouter()
	r.HandleFunc("/api/metadata/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/movies/{feed:[a-z_]+}", h.MovieFeed).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/tv/{feed:[a-z_]+}", h.TVFeed).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/{type:movie|tv}/{id:[0-9]+}/trailer", h.Trailer).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/movie/{id:[0-9]+}", h.MovieDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/tv/{id:[0-9]+}", h.TVDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/person/{id:[0-9]+}/filmography", h.Filmography).Methods(http.MethodGet)
	return r
}

func TestSearchRequiresQuery(t *testing.T) {
	r := newMetadataRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/search", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMovieFeedServesKnownFeed(t *testing.T) {
	r := newMetadataRouter(t, map[string]string{
		"/3/movie/popular": `{"page":1,"total_pages":10,"total_results":200,"results":[{"id":603,"title":"The Matrix"}]}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/movies/popular", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "The Matrix", body.Results[0].Title)
}

func TestUnknownFeedIs404(t *testing.T) {
	r := newMetadataRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/movies/bogus", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/metadata/tv/bogus", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrailerNotFoundWhenNoPlayableVideo(t *testing.T) {
	r := newMetadataRouter(t, map[string]string{
		"/3/movie/603": `{"id":603,"title":"The Matrix","videos":{"results":[{"key":"","site":"YouTube","type":"Trailer"}]}}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/movie/603/trailer", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no trailer")
}

func TestTrailerReturnsBestVideo(t *testing.T) {
	r := newMetadataRouter(t, map[string]string{
		"/3/movie/603": `{"id":603,"title":"The Matrix","videos":{"results":[
			{"key":"teaser1","site":"YouTube","type":"Teaser","official":true},
			{"key":"trailer1","site":"YouTube","type":"Trailer","official":true}
		]}}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/movie/603/trailer", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var video struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &video))
	assert.Equal(t, "trailer1", video.Key)
}

func TestTVTrailerUsesShowVideos(t *testing.T) {
	r := newMetadataRouter(t, map[string]string{
		"/3/tv/1396": `{"id":1396,"name":"Breaking Bad","videos":{"results":[
			{"key":"bbtrailer","site":"YouTube","type":"Trailer","official":true}
		]}}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/tv/1396/trailer", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var video struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &video))
	assert.Equal(t, "bbtrailer", video.Key)
}

func TestTVDetailsNotShadowedByFeedRoute(t *testing.T) {
	r := newMetadataRouter(t, map[string]string{
		"/3/tv/1396": `{"id":1396,"name":"Breaking Bad"}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/tv/1396", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Breaking Bad", body.Name)
}

func TestFilmographySplitsCredits(t *testing.T) {
	r := newMetadataRouter(t, map[string]string{
		"/3/person/42": `{"id":42,"name":"Test Actor","combined_credits":{"cast":[
			{"id":1,"media_type":"movie","title":"Past Film","release_date":"2000-01-01"},
			{"id":2,"media_type":"movie","title":"Future Film","release_date":"2999-01-01"}
		]}}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/person/42/filmography", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Movies     []json.RawMessage `json:"movies"`
		ComingSoon []json.RawMessage `json:"comingSoon"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Movies, 1)
	assert.Len(t, body.ComingSoon, 1)
}

func TestInvalidIDIs400(t *testing.T) {
	r := newMetadataRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/movie/0", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
