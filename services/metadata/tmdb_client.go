package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"sala2/models"
)

// Minimal TMDB v3 client (search, browse feeds, discover windows and the
// all-in-one detail bundles the catalog pages need).

const defaultTMDBBaseURL = "https://api.themoviedb.org/3"

type tmdbClient struct {
	apiKey   string
	language string
	region   string
	baseURL  string
	httpc    *http.Client
}

func newTMDBClient(apiKey, language, region string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if language == "" {
		language = "es-ES"
	}
	if region == "" {
		region = "ES"
	}
	return &tmdbClient{
		apiKey:   apiKey,
		language: language,
		region:   region,
		baseURL:  defaultTMDBBaseURL,
		httpc:    httpc,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c.apiKey != ""
}

// doGET performs one metadata-source request. The api_key, language and
// region parameters are injected here for every call site, never per
// endpoint. Transient failures (429, 5xx, network errors) are retried with
// backoff; other HTTP errors fail immediately.
func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	if !c.isConfigured() {
		return ErrNotConfigured
	}
	if q == nil {
		q = url.Values{}
	}
	if q.Get("api_key") == "" {
		q.Set("api_key", c.apiKey)
	}
	if q.Get("language") == "" {
		q.Set("language", c.language)
	}
	if q.Get("region") == "" {
		q.Set("region", c.region)
	}
	u := c.baseURL + path + "?" + q.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("tmdb GET %s: %s", path, resp.Status)
			}
			if resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("tmdb GET %s: %s", path, resp.Status))
			}
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tmdb decode %s: %w", path, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// searchByType runs one paginated search request for a single media type and
// stamps the media type on every result. Stamping happens here, during the
// per-type fetch, so downstream classification never has to infer it.
func (c *tmdbClient) searchByType(ctx context.Context, mediaType models.MediaType, query string, page int) ([]models.MediaRecord, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("include_adult", "false")

	var resp models.PaginatedResponse
	if err := c.doGET(ctx, "/search/"+string(mediaType), q, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Results {
		resp.Results[i].MediaType = mediaType
	}
	return resp.Results, nil
}

// movieFeed fetches one of the fixed movie browse feeds
// (popular, now_playing, upcoming, top_rated).
func (c *tmdbClient) movieFeed(ctx context.Context, feed string, page int) (*models.PaginatedResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var resp models.PaginatedResponse
	if err := c.doGET(ctx, "/movie/"+feed, q, &resp); err != nil {
		return nil, err
	}
	stampResults(resp.Results, models.MediaTypeMovie)
	return &resp, nil
}

// tvFeed fetches one of the fixed TV browse feeds
// (popular, airing_today, on_the_air, top_rated).
func (c *tmdbClient) tvFeed(ctx context.Context, feed string, page int) (*models.PaginatedResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var resp models.PaginatedResponse
	if err := c.doGET(ctx, "/tv/"+feed, q, &resp); err != nil {
		return nil, err
	}
	stampResults(resp.Results, models.MediaTypeTV)
	return &resp, nil
}

// trendingToday fetches the daily trending feed for a media type.
func (c *tmdbClient) trendingToday(ctx context.Context, mediaType models.MediaType, page int) (*models.PaginatedResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var resp models.PaginatedResponse
	if err := c.doGET(ctx, "/trending/"+string(mediaType)+"/day", q, &resp); err != nil {
		return nil, err
	}
	stampResults(resp.Results, mediaType)
	return &resp, nil
}

// discoverInCinemas fetches movies in a release window around today
// (28 days back, 14 forward), theatrical release types only.
func (c *tmdbClient) discoverInCinemas(ctx context.Context, page int, now time.Time) (*models.PaginatedResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("sort_by", "popularity.desc")
	q.Set("with_release_type", "2|3")
	q.Set("release_date.gte", now.AddDate(0, 0, -28).Format("2006-01-02"))
	q.Set("release_date.lte", now.AddDate(0, 0, 14).Format("2006-01-02"))
	q.Set("include_adult", "false")

	var resp models.PaginatedResponse
	if err := c.doGET(ctx, "/discover/movie", q, &resp); err != nil {
		return nil, err
	}
	stampResults(resp.Results, models.MediaTypeMovie)
	return &resp, nil
}

// discoverComingSoon fetches movies releasing in the next 90 days, ordered by
// release date.
func (c *tmdbClient) discoverComingSoon(ctx context.Context, page int, now time.Time) (*models.PaginatedResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("sort_by", "release_date.asc")
	q.Set("with_release_type", "2|3")
	q.Set("release_date.gte", now.AddDate(0, 0, 1).Format("2006-01-02"))
	q.Set("release_date.lte", now.AddDate(0, 0, 90).Format("2006-01-02"))
	q.Set("include_adult", "false")

	var resp models.PaginatedResponse
	if err := c.doGET(ctx, "/discover/movie", q, &resp); err != nil {
		return nil, err
	}
	stampResults(resp.Results, models.MediaTypeMovie)
	return &resp, nil
}

// movieDetails fetches the all-in-one movie bundle. One request, sub-resources
// attached via append_to_response.
func (c *tmdbClient) movieDetails(ctx context.Context, id int64) (*models.MovieDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "videos,credits,recommendations,similar,external_ids")

	var details models.MovieDetails
	if err := c.doGET(ctx, fmt.Sprintf("/movie/%d", id), q, &details); err != nil {
		return nil, err
	}
	details.MediaType = models.MediaTypeMovie
	if details.Recommendations != nil {
		stampResults(details.Recommendations.Results, models.MediaTypeMovie)
	}
	if details.Similar != nil {
		stampResults(details.Similar.Results, models.MediaTypeMovie)
	}
	return &details, nil
}

// tvDetails fetches the all-in-one TV bundle.
func (c *tmdbClient) tvDetails(ctx context.Context, id int64) (*models.TVDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "videos,credits,recommendations,similar,external_ids")

	var details models.TVDetails
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d", id), q, &details); err != nil {
		return nil, err
	}
	details.MediaType = models.MediaTypeTV
	if details.Recommendations != nil {
		stampResults(details.Recommendations.Results, models.MediaTypeTV)
	}
	if details.Similar != nil {
		stampResults(details.Similar.Results, models.MediaTypeTV)
	}
	return &details, nil
}

// seasonDetails fetches one season of a show, episodes included.
func (c *tmdbClient) seasonDetails(ctx context.Context, tvID int64, season int) (*models.SeasonDetails, error) {
	var details models.SeasonDetails
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d/season/%d", tvID, season), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// personDetails fetches a person with their combined credits.
func (c *tmdbClient) personDetails(ctx context.Context, id int64) (*models.PersonDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "combined_credits,external_ids")

	var details models.PersonDetails
	if err := c.doGET(ctx, fmt.Sprintf("/person/%d", id), q, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func stampResults(records []models.MediaRecord, mediaType models.MediaType) {
	for i := range records {
		records[i].MediaType = mediaType
	}
}
