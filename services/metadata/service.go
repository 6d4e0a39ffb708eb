package metadata

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"sala2/models"
)

var (
	ErrUnknownFeed   = errors.New("unknown browse feed")
	ErrNoTrailer     = errors.New("no playable trailer")
	ErrNotConfigured = errors.New("metadata api key not configured")
)

// movieFeeds and tvFeeds whitelist the browse feeds the catalog exposes.
var (
	movieFeeds = map[string]struct{}{
		"popular":     {},
		"now_playing": {},
		"upcoming":    {},
		"top_rated":   {},
	}
	tvFeeds = map[string]struct{}{
		"popular":      {},
		"airing_today": {},
		"on_the_air":   {},
		"top_rated":    {},
	}
)

// Service proxies the metadata source for the catalog pages: browse feeds,
// detail bundles, trailer selection, filmography and cross-media search.
// Responses are cached on disk; only Search keeps in-memory state (the
// single-slot last-query snapshot).
type Service struct {
	tmdbMu sync.RWMutex
	tmdb   *tmdbClient
	cache  *fileCache

	searchMu      sync.Mutex
	searchGen     uint64
	lastSearchGen uint64
	lastSearch    *models.SearchResultSet
}

// NewService creates the metadata service. fs may be nil (OS filesystem) and
// httpc may be nil (default client with timeout).
func NewService(apiKey, language, region, cacheDir string, ttlHours int, fs afero.Fs, httpc *http.Client) *Service {
	return &Service{
		tmdb:  newTMDBClient(apiKey, language, region, httpc),
		cache: newFileCache(fs, cacheDir, ttlHours),
	}
}

// UpdateAPIKey swaps the metadata-source credentials and clears cached data
// so fresh responses are fetched with the new key. Called on config reload
// while requests may be in flight.
func (s *Service) UpdateAPIKey(apiKey, language, region string) {
	s.tmdbMu.Lock()
	s.tmdb = newTMDBClient(apiKey, language, region, s.tmdb.httpc)
	s.tmdbMu.Unlock()

	if err := s.cache.clear(); err != nil {
		log.Printf("[metadata] warning: failed to clear cache: %v", err)
	}
}

func (s *Service) client() *tmdbClient {
	s.tmdbMu.RLock()
	defer s.tmdbMu.RUnlock()
	return s.tmdb
}

func cacheKey(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}

// MovieFeed returns one page of a fixed movie browse feed.
func (s *Service) MovieFeed(ctx context.Context, feed string, page int) (*models.PaginatedResponse, error) {
	feed = strings.ToLower(strings.TrimSpace(feed))
	if _, ok := movieFeeds[feed]; !ok {
		return nil, fmt.Errorf("%w: movie/%s", ErrUnknownFeed, feed)
	}
	if page < 1 {
		page = 1
	}

	tmdb := s.client()
	key := cacheKey("movie", feed, tmdb.language, fmt.Sprintf("%d", page))
	var cached models.PaginatedResponse
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	resp, err := tmdb.movieFeed(ctx, feed, page)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, resp)
	return resp, nil
}

// TVFeed returns one page of a fixed TV browse feed.
func (s *Service) TVFeed(ctx context.Context, feed string, page int) (*models.PaginatedResponse, error) {
	feed = strings.ToLower(strings.TrimSpace(feed))
	if _, ok := tvFeeds[feed]; !ok {
		return nil, fmt.Errorf("%w: tv/%s", ErrUnknownFeed, feed)
	}
	if page < 1 {
		page = 1
	}

	tmdb := s.client()
	key := cacheKey("tv", feed, tmdb.language, fmt.Sprintf("%d", page))
	var cached models.PaginatedResponse
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	resp, err := tmdb.tvFeed(ctx, feed, page)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, resp)
	return resp, nil
}

// Trending returns today's trending feed for a media type.
func (s *Service) Trending(ctx context.Context, mediaType models.MediaType, page int) (*models.PaginatedResponse, error) {
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeTV {
		mediaType = models.MediaTypeMovie
	}
	if page < 1 {
		page = 1
	}

	tmdb := s.client()
	key := cacheKey("trending", string(mediaType), tmdb.language, fmt.Sprintf("%d", page))
	var cached models.PaginatedResponse
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	resp, err := tmdb.trendingToday(ctx, mediaType, page)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, resp)
	return resp, nil
}

// InCinemas returns movies currently in a theatrical window around today.
// The window moves daily, so the date is part of the cache key.
func (s *Service) InCinemas(ctx context.Context, page int) (*models.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	now := time.Now()

	tmdb := s.client()
	key := cacheKey("discover", "in-cinemas", tmdb.language, now.Format("2006-01-02"), fmt.Sprintf("%d", page))
	var cached models.PaginatedResponse
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	resp, err := tmdb.discoverInCinemas(ctx, page, now)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, resp)
	return resp, nil
}

// ComingSoon returns movies releasing within the next 90 days.
func (s *Service) ComingSoon(ctx context.Context, page int) (*models.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	now := time.Now()

	tmdb := s.client()
	key := cacheKey("discover", "coming-soon", tmdb.language, now.Format("2006-01-02"), fmt.Sprintf("%d", page))
	var cached models.PaginatedResponse
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	resp, err := tmdb.discoverComingSoon(ctx, page, now)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, resp)
	return resp, nil
}

// MovieDetails returns the all-in-one movie bundle.
func (s *Service) MovieDetails(ctx context.Context, id int64) (*models.MovieDetails, error) {
	tmdb := s.client()
	key := cacheKey("details", "movie", tmdb.language, fmt.Sprintf("%d", id))
	var cached models.MovieDetails
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	details, err := tmdb.movieDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, details)
	return details, nil
}

// TVDetails returns the all-in-one TV bundle.
func (s *Service) TVDetails(ctx context.Context, id int64) (*models.TVDetails, error) {
	tmdb := s.client()
	key := cacheKey("details", "tv", tmdb.language, fmt.Sprintf("%d", id))
	var cached models.TVDetails
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	details, err := tmdb.tvDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, details)
	return details, nil
}

// SeasonDetails returns one season of a show with its episodes.
func (s *Service) SeasonDetails(ctx context.Context, tvID int64, season int) (*models.SeasonDetails, error) {
	tmdb := s.client()
	key := cacheKey("details", "season", tmdb.language, fmt.Sprintf("%d", tvID), fmt.Sprintf("%d", season))
	var cached models.SeasonDetails
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	details, err := tmdb.seasonDetails(ctx, tvID, season)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, details)
	return details, nil
}

// PersonDetails returns a person with their combined credits.
func (s *Service) PersonDetails(ctx context.Context, id int64) (*models.PersonDetails, error) {
	tmdb := s.client()
	key := cacheKey("details", "person", tmdb.language, fmt.Sprintf("%d", id))
	var cached models.PersonDetails
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	details, err := tmdb.personDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.set(key, details)
	return details, nil
}

// Trailer picks the best playable trailer for a movie or TV show.
// Returns ErrNoTrailer when the title has no playable YouTube asset.
func (s *Service) Trailer(ctx context.Context, mediaType models.MediaType, id int64) (*models.VideoAsset, error) {
	var videos *models.VideoList
	switch mediaType {
	case models.MediaTypeTV:
		details, err := s.TVDetails(ctx, id)
		if err != nil {
			return nil, err
		}
		videos = details.Videos
	default:
		details, err := s.MovieDetails(ctx, id)
		if err != nil {
			return nil, err
		}
		videos = details.Videos
	}

	if videos == nil {
		return nil, ErrNoTrailer
	}
	best := SelectBestVideo(videos.Results)
	if best == nil {
		return nil, ErrNoTrailer
	}
	return best, nil
}

// Filmography returns a person's credits split into released and upcoming
// sections, ranked for display.
func (s *Service) Filmography(ctx context.Context, personID int64) (*models.Filmography, error) {
	details, err := s.PersonDetails(ctx, personID)
	if err != nil {
		return nil, err
	}

	var cast []models.CombinedCredit
	if details.CombinedCredits != nil {
		cast = details.CombinedCredits.Cast
	}
	filmography := SplitFilmography(cast)
	return &filmography, nil
}
