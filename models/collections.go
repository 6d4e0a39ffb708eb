package models

// MovieSummary is the slim movie projection stored in a user's favorites.
type MovieSummary struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	PosterPath  *string  `json:"posterPath"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	VoteAverage *float64 `json:"voteAverage,omitempty"`
}

// TVSummary is the slim TV projection stored in a user's followed shows.
type TVSummary struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	PosterPath   *string  `json:"posterPath"`
	FirstAirDate string   `json:"firstAirDate,omitempty"`
	VoteAverage  *float64 `json:"voteAverage,omitempty"`
}

// UserCollections bundles everything a user has favorited or followed.
type UserCollections struct {
	Movies []MovieSummary `json:"movies"`
	TV     []TVSummary    `json:"tv"`
}
