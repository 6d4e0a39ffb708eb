package models

// MediaType discriminates how a metadata record is displayed and routed.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeTV     MediaType = "tv"
	MediaTypePerson MediaType = "person"
)

// MediaRecord mirrors a raw result row from the metadata source. A movie and
// a TV show may share numeric IDs, so identity is (MediaType, ID).
type MediaRecord struct {
	ID            int64     `json:"id"`
	MediaType     MediaType `json:"media_type,omitempty"`
	Title         string    `json:"title,omitempty"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Name          string    `json:"name,omitempty"`
	OriginalName  string    `json:"original_name,omitempty"`
	Overview      string    `json:"overview,omitempty"`
	PosterPath    *string   `json:"poster_path,omitempty"`
	BackdropPath  *string   `json:"backdrop_path,omitempty"`
	ProfilePath   *string   `json:"profile_path,omitempty"`
	ReleaseDate   string    `json:"release_date,omitempty"`
	FirstAirDate  string    `json:"first_air_date,omitempty"`
	VoteAverage   *float64  `json:"vote_average,omitempty"`
	VoteCount     *int64    `json:"vote_count,omitempty"`
	Popularity    *float64  `json:"popularity,omitempty"`
	GenreIDs      []int64   `json:"genre_ids,omitempty"`
}

// DisplayName returns the localized display name for the record, falling back
// to the original-language field. Movies carry title, TV and persons carry name.
func (r MediaRecord) DisplayName() string {
	if r.Title != "" {
		return r.Title
	}
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	if r.Name != "" {
		return r.Name
	}
	return r.OriginalName
}

// MediaItem is the display-ready projection of a MediaRecord. Exactly one of
// Title/Name is meaningful depending on media type; an absent date field means
// "unknown", never epoch.
type MediaItem struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"mediaType,omitempty"`
	PosterPath   *string   `json:"posterPath"`
	ProfilePath  *string   `json:"profilePath,omitempty"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	FirstAirDate string    `json:"firstAirDate,omitempty"`
	VoteAverage  *float64  `json:"voteAverage,omitempty"`
	Popularity   *float64  `json:"popularity,omitempty"`
}

// DisplayName returns whichever of Title/Name is populated.
func (m MediaItem) DisplayName() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Date returns the release date for movies or the first-air date for TV,
// empty when unknown.
func (m MediaItem) Date() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// PaginatedResponse is the envelope every list endpoint of the metadata
// source returns.
type PaginatedResponse struct {
	Page         int           `json:"page"`
	Results      []MediaRecord `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// SearchResultSet holds one aggregated cross-media search, already classified
// per media type.
type SearchResultSet struct {
	Query   string      `json:"query"`
	Movies  []MediaItem `json:"movies"`
	TV      []MediaItem `json:"tv"`
	Persons []MediaItem `json:"persons"`
}

// CombinedCredit is one row of a person's aggregated movie and TV
// appearances. The same title may appear multiple times for multiple roles.
type CombinedCredit struct {
	ID            int64     `json:"id"`
	MediaType     MediaType `json:"media_type"`
	Title         string    `json:"title,omitempty"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Name          string    `json:"name,omitempty"`
	OriginalName  string    `json:"original_name,omitempty"`
	PosterPath    *string   `json:"poster_path,omitempty"`
	ReleaseDate   string    `json:"release_date,omitempty"`
	FirstAirDate  string    `json:"first_air_date,omitempty"`
	VoteAverage   *float64  `json:"vote_average,omitempty"`
	Popularity    *float64  `json:"popularity,omitempty"`
	Character     string    `json:"character,omitempty"`
	CreditID      string    `json:"credit_id,omitempty"`
	EpisodeCount  int       `json:"episode_count,omitempty"`
}

// Filmography is a person's credit list partitioned into released and
// upcoming titles, movies and TV separately plus a unified coming-soon list.
type Filmography struct {
	Movies     []MediaItem `json:"movies"`
	TV         []MediaItem `json:"tv"`
	ComingSoon []MediaItem `json:"comingSoon"`
}
