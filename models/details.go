package models

// Genre is a named genre tag on a detail response.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is one acting credit on a title.
type CastMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character,omitempty"`
	ProfilePath *string `json:"profile_path,omitempty"`
	Order       int     `json:"order,omitempty"`
	CreditID    string  `json:"credit_id,omitempty"`
}

// CrewMember is one crew credit on a title.
type CrewMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job,omitempty"`
	Department  string  `json:"department,omitempty"`
	ProfilePath *string `json:"profile_path,omitempty"`
	CreditID    string  `json:"credit_id,omitempty"`
}

// Credits groups the cast and crew of a title.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// ExternalIDs carries cross-reference identifiers for a title or person.
type ExternalIDs struct {
	IMDBID      string `json:"imdb_id,omitempty"`
	FacebookID  string `json:"facebook_id,omitempty"`
	InstagramID string `json:"instagram_id,omitempty"`
	TwitterID   string `json:"twitter_id,omitempty"`
}

// MovieDetails is the all-in-one detail bundle for a movie, including the
// sub-resources requested via append_to_response.
type MovieDetails struct {
	MediaRecord
	Genres          []Genre            `json:"genres,omitempty"`
	Runtime         *int               `json:"runtime,omitempty"`
	Tagline         string             `json:"tagline,omitempty"`
	Homepage        string             `json:"homepage,omitempty"`
	Status          string             `json:"status,omitempty"`
	Videos          *VideoList         `json:"videos,omitempty"`
	Credits         *Credits           `json:"credits,omitempty"`
	Recommendations *PaginatedResponse `json:"recommendations,omitempty"`
	Similar         *PaginatedResponse `json:"similar,omitempty"`
	ExternalIDs     *ExternalIDs       `json:"external_ids,omitempty"`
}

// SeasonSummary is the per-season row inside a TV detail response.
type SeasonSummary struct {
	ID           int64   `json:"id"`
	SeasonNumber int     `json:"season_number"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   *string `json:"poster_path,omitempty"`
	AirDate      string  `json:"air_date,omitempty"`
	EpisodeCount int     `json:"episode_count"`
}

// TVDetails is the all-in-one detail bundle for a TV show.
type TVDetails struct {
	MediaRecord
	Genres           []Genre            `json:"genres,omitempty"`
	Homepage         string             `json:"homepage,omitempty"`
	Status           string             `json:"status,omitempty"`
	NumberOfSeasons  int                `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int                `json:"number_of_episodes,omitempty"`
	Seasons          []SeasonSummary    `json:"seasons,omitempty"`
	Videos           *VideoList         `json:"videos,omitempty"`
	Credits          *Credits           `json:"credits,omitempty"`
	Recommendations  *PaginatedResponse `json:"recommendations,omitempty"`
	Similar          *PaginatedResponse `json:"similar,omitempty"`
	ExternalIDs      *ExternalIDs       `json:"external_ids,omitempty"`
}

// Episode is one episode row inside a season detail response.
type Episode struct {
	ID            int64    `json:"id"`
	EpisodeNumber int      `json:"episode_number"`
	SeasonNumber  int      `json:"season_number"`
	Name          string   `json:"name"`
	Overview      string   `json:"overview,omitempty"`
	AirDate       string   `json:"air_date,omitempty"`
	StillPath     *string  `json:"still_path,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	Runtime       *int     `json:"runtime,omitempty"`
}

// SeasonDetails is the detail bundle for a single season of a TV show.
type SeasonDetails struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview,omitempty"`
	PosterPath   *string   `json:"poster_path,omitempty"`
	AirDate      string    `json:"air_date,omitempty"`
	Episodes     []Episode `json:"episodes"`
}

// CombinedCredits is the combined_credits sub-resource of a person detail.
type CombinedCredits struct {
	Cast []CombinedCredit `json:"cast"`
	Crew []CombinedCredit `json:"crew"`
}

// PersonDetails is the all-in-one detail bundle for a person.
type PersonDetails struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Biography          string           `json:"biography,omitempty"`
	Birthday           string           `json:"birthday,omitempty"`
	Deathday           string           `json:"deathday,omitempty"`
	Gender             int              `json:"gender,omitempty"`
	KnownForDepartment string           `json:"known_for_department,omitempty"`
	PlaceOfBirth       string           `json:"place_of_birth,omitempty"`
	ProfilePath        *string          `json:"profile_path,omitempty"`
	Homepage           string           `json:"homepage,omitempty"`
	Popularity         *float64         `json:"popularity,omitempty"`
	AlsoKnownAs        []string         `json:"also_known_as,omitempty"`
	CombinedCredits    *CombinedCredits `json:"combined_credits,omitempty"`
	ExternalIDs        *ExternalIDs     `json:"external_ids,omitempty"`
}
