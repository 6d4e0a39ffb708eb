package metadata

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"sala2/models"
)

var ErrEmptyQuery = errors.New("search query is required")

const (
	// searchPages is how many result pages are fetched per media type.
	searchPages = 3
	// searchPerTypeLimit caps the merged page results per media type.
	searchPerTypeLimit = 40
)

var searchTypes = []models.MediaType{
	models.MediaTypeMovie,
	models.MediaTypeTV,
	models.MediaTypePerson,
}

// Search fans out one paginated request per media type and page (9 in total),
// joins them, and classifies the merged results. All requests must succeed:
// a half-populated cross-media result set would be misleading, so any failure
// fails the whole aggregation and leaves the last-query snapshot untouched.
//
// The result is returned directly; a snapshot is also kept for the
// navigate-then-read handoff between the search box and the results page. A
// generation counter guarantees a slow stale aggregation can never overwrite
// a newer one.
func (s *Service) Search(ctx context.Context, query string) (*models.SearchResultSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	gen := atomic.AddUint64(&s.searchGen, 1)
	tmdb := s.client()

	pages := make([][]models.MediaRecord, len(searchTypes)*searchPages)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for ti, mediaType := range searchTypes {
		for page := 1; page <= searchPages; page++ {
			idx := ti*searchPages + page - 1
			mediaType, page := mediaType, page
			p.Go(func(ctx context.Context) error {
				records, err := tmdb.searchByType(ctx, mediaType, query, page)
				if err != nil {
					return err
				}
				pages[idx] = records
				return nil
			})
		}
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	set := &models.SearchResultSet{Query: query}
	for ti, mediaType := range searchTypes {
		merged := make([]models.MediaRecord, 0, searchPages*20)
		for page := 0; page < searchPages; page++ {
			merged = append(merged, pages[ti*searchPages+page]...)
		}
		if len(merged) > searchPerTypeLimit {
			merged = merged[:searchPerTypeLimit]
		}

		items := classifyResults(merged, mediaType)
		switch mediaType {
		case models.MediaTypeMovie:
			set.Movies = items
		case models.MediaTypeTV:
			set.TV = items
		case models.MediaTypePerson:
			set.Persons = items
		}
	}

	s.storeSearch(gen, set)
	return set, nil
}

// classifyResults prepares one media-type sublist for display: persons with
// no profile image are dropped, duplicates removed by id, records normalized
// and the list ordered by popularity descending (missing popularity sorts
// as 0).
func classifyResults(records []models.MediaRecord, mediaType models.MediaType) []models.MediaItem {
	filtered := records
	if mediaType == models.MediaTypePerson {
		filtered = make([]models.MediaRecord, 0, len(records))
		for _, r := range records {
			if r.ProfilePath != nil && *r.ProfilePath != "" {
				filtered = append(filtered, r)
			}
		}
	}

	unique := DedupeBy(filtered, func(r models.MediaRecord) int64 { return r.ID })
	items := NormalizeAll(unique)

	sort.SliceStable(items, func(i, j int) bool {
		return popularityOrZero(items[i]) > popularityOrZero(items[j])
	})
	return items
}

func popularityOrZero(item models.MediaItem) float64 {
	if item.Popularity == nil {
		return 0
	}
	return *item.Popularity
}

// storeSearch publishes a finished aggregation as the last-query snapshot
// unless a newer aggregation already did.
func (s *Service) storeSearch(gen uint64, set *models.SearchResultSet) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	if gen < s.lastSearchGen {
		return
	}
	s.lastSearchGen = gen
	s.lastSearch = set
}

// LastSearch returns the most recent successful search result set, if any.
// The slot holds exactly one entry and is overwritten by every new search.
func (s *Service) LastSearch() (*models.SearchResultSet, bool) {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	if s.lastSearch == nil {
		return nil, false
	}
	return s.lastSearch, true
}
