package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sala2/models"
)

// searchTransport fakes the three /search/{type} endpoints, 20 rows per page.
type searchTransport struct {
	mu       sync.Mutex
	requests []string
	failPath string
}

func (st *searchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	st.mu.Lock()
	st.requests = append(st.requests, req.URL.Path+"?page="+req.URL.Query().Get("page"))
	st.mu.Unlock()

	if st.failPath != "" && strings.Contains(req.URL.Path, st.failPath) {
		return jsonResponse(http.StatusInternalServerError, `{}`), nil
	}

	mediaType := req.URL.Path[strings.LastIndex(req.URL.Path, "/")+1:]
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))

	results := make([]map[string]any, 0, 20)
	for i := 0; i < 20; i++ {
		id := int64(page*100 + i)
		row := map[string]any{"id": id, "popularity": float64(1000 - id)}
		switch mediaType {
		case "movie":
			row["title"] = fmt.Sprintf("Movie %d", id)
		case "tv":
			row["name"] = fmt.Sprintf("Show %d", id)
		case "person":
			row["name"] = fmt.Sprintf("Person %d", id)
			// Half the persons have no profile image and must be dropped.
			if i%2 == 0 {
				row["profile_path"] = fmt.Sprintf("/p%d.jpg", id)
			}
		}
		results = append(results, row)
	}

	body, _ := json.Marshal(map[string]any{
		"page": page, "results": results, "total_pages": 10, "total_results": 200,
	})
	return jsonResponse(http.StatusOK, string(body)), nil
}

func (st *searchTransport) count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.requests)
}

func newSearchService(transport http.RoundTripper) *Service {
	httpc := &http.Client{Transport: transport}
	return &Service{
		tmdb:  newTMDBClient("k", "es-ES", "ES", httpc),
		cache: newFileCache(afero.NewMemMapFs(), "/cache", 24),
	}
}

func TestSearchFansOutNineRequests(t *testing.T) {
	st := &searchTransport{}
	svc := newSearchService(st)

	set, err := svc.Search(context.Background(), "batman")
	require.NoError(t, err)
	assert.Equal(t, 9, st.count())
	assert.Equal(t, "batman", set.Query)

	st.mu.Lock()
	defer st.mu.Unlock()
	perType := map[string]int{}
	for _, r := range st.requests {
		for _, mt := range []string{"movie", "tv", "person"} {
			if strings.HasSuffix(strings.Split(r, "?")[0], "/search/"+mt) {
				perType[mt]++
			}
		}
	}
	assert.Equal(t, map[string]int{"movie": 3, "tv": 3, "person": 3}, perType)
}

func TestSearchCapsFortyItemsPerType(t *testing.T) {
	svc := newSearchService(&searchTransport{})

	set, err := svc.Search(context.Background(), "batman")
	require.NoError(t, err)

	// 3 pages x 20 rows = 60 per type, capped at 40 before classification.
	assert.Len(t, set.Movies, 40)
	assert.Len(t, set.TV, 40)
	// Persons additionally lose the half without a profile image.
	assert.Len(t, set.Persons, 20)
	for _, p := range set.Persons {
		require.NotNil(t, p.ProfilePath)
	}
}

func TestSearchSortsByPopularityDescending(t *testing.T) {
	svc := newSearchService(&searchTransport{})

	set, err := svc.Search(context.Background(), "batman")
	require.NoError(t, err)

	for i := 1; i < len(set.Movies); i++ {
		prev, cur := set.Movies[i-1], set.Movies[i]
		require.NotNil(t, prev.Popularity)
		require.NotNil(t, cur.Popularity)
		assert.GreaterOrEqual(t, *prev.Popularity, *cur.Popularity)
	}
}

func TestSearchStampsMediaType(t *testing.T) {
	svc := newSearchService(&searchTransport{})

	set, err := svc.Search(context.Background(), "batman")
	require.NoError(t, err)

	for _, m := range set.Movies {
		assert.Equal(t, models.MediaTypeMovie, m.MediaType)
	}
	for _, s := range set.TV {
		assert.Equal(t, models.MediaTypeTV, s.MediaType)
	}
	for _, p := range set.Persons {
		assert.Equal(t, models.MediaTypePerson, p.MediaType)
	}
}

func TestSearchFailureLeavesSnapshotUntouched(t *testing.T) {
	st := &searchTransport{}
	svc := newSearchService(st)

	_, err := svc.Search(context.Background(), "batman")
	require.NoError(t, err)

	st.failPath = "/search/tv"
	_, err = svc.Search(context.Background(), "superman")
	require.Error(t, err)

	// Join-all semantics: no partial result set may replace the snapshot.
	last, ok := svc.LastSearch()
	require.True(t, ok)
	assert.Equal(t, "batman", last.Query)
}

func TestSearchOverwritesPreviousQuery(t *testing.T) {
	svc := newSearchService(&searchTransport{})

	_, err := svc.Search(context.Background(), "batman")
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "superman")
	require.NoError(t, err)

	last, ok := svc.LastSearch()
	require.True(t, ok)
	assert.Equal(t, "superman", last.Query)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := newSearchService(&searchTransport{})

	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, ok := svc.LastSearch()
	assert.False(t, ok)
}

func TestStoreSearchStaleGenerationDiscarded(t *testing.T) {
	svc := newSearchService(&searchTransport{})

	svc.storeSearch(2, &models.SearchResultSet{Query: "newer"})
	svc.storeSearch(1, &models.SearchResultSet{Query: "older"})

	last, ok := svc.LastSearch()
	require.True(t, ok)
	assert.Equal(t, "newer", last.Query)
}
