package database

import (
	"database/sql"
	"fmt"

	"sala2/models"
)

// CollectionsRepository stores per-user favorite movies and followed TV shows.
type CollectionsRepository struct {
	db *sql.DB
}

// NewCollectionsRepository creates a new collections repository.
func NewCollectionsRepository(db *sql.DB) *CollectionsRepository {
	return &CollectionsRepository{db: db}
}

// HasMovie reports whether the movie is in the user's favorites.
func (r *CollectionsRepository) HasMovie(userID string, movieID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(
		`SELECT 1 FROM favorite_movies WHERE user_id = ? AND movie_id = ?`,
		userID, movieID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query favorite movie: %w", err)
	}
	return true, nil
}

// AddMovie inserts a movie into the user's favorites.
func (r *CollectionsRepository) AddMovie(userID string, movie models.MovieSummary) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO favorite_movies
		 (user_id, movie_id, title, poster_path, release_date, vote_average)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, movie.ID, movie.Title, movie.PosterPath, movie.ReleaseDate, movie.VoteAverage,
	)
	if err != nil {
		return fmt.Errorf("insert favorite movie: %w", err)
	}
	return nil
}

// RemoveMovie deletes a movie from the user's favorites.
func (r *CollectionsRepository) RemoveMovie(userID string, movieID int64) error {
	_, err := r.db.Exec(
		`DELETE FROM favorite_movies WHERE user_id = ? AND movie_id = ?`,
		userID, movieID,
	)
	if err != nil {
		return fmt.Errorf("delete favorite movie: %w", err)
	}
	return nil
}

// ListMovies returns the user's favorite movies, most recently added first.
func (r *CollectionsRepository) ListMovies(userID string) ([]models.MovieSummary, error) {
	rows, err := r.db.Query(
		`SELECT movie_id, title, poster_path, release_date, vote_average
		 FROM favorite_movies WHERE user_id = ?
		 ORDER BY added_at DESC, movie_id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorite movies: %w", err)
	}
	defer rows.Close()

	movies := []models.MovieSummary{}
	for rows.Next() {
		var m models.MovieSummary
		if err := rows.Scan(&m.ID, &m.Title, &m.PosterPath, &m.ReleaseDate, &m.VoteAverage); err != nil {
			return nil, fmt.Errorf("scan favorite movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// HasTV reports whether the show is in the user's followed list.
func (r *CollectionsRepository) HasTV(userID string, tvID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(
		`SELECT 1 FROM followed_tv WHERE user_id = ? AND tv_id = ?`,
		userID, tvID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query followed tv: %w", err)
	}
	return true, nil
}

// AddTV inserts a show into the user's followed list.
func (r *CollectionsRepository) AddTV(userID string, show models.TVSummary) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO followed_tv
		 (user_id, tv_id, name, poster_path, first_air_date, vote_average)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, show.ID, show.Name, show.PosterPath, show.FirstAirDate, show.VoteAverage,
	)
	if err != nil {
		return fmt.Errorf("insert followed tv: %w", err)
	}
	return nil
}

// RemoveTV deletes a show from the user's followed list.
func (r *CollectionsRepository) RemoveTV(userID string, tvID int64) error {
	_, err := r.db.Exec(
		`DELETE FROM followed_tv WHERE user_id = ? AND tv_id = ?`,
		userID, tvID,
	)
	if err != nil {
		return fmt.Errorf("delete followed tv: %w", err)
	}
	return nil
}

// ListTV returns the user's followed shows, most recently added first.
func (r *CollectionsRepository) ListTV(userID string) ([]models.TVSummary, error) {
	rows, err := r.db.Query(
		`SELECT tv_id, name, poster_path, first_air_date, vote_average
		 FROM followed_tv WHERE user_id = ?
		 ORDER BY added_at DESC, tv_id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list followed tv: %w", err)
	}
	defer rows.Close()

	shows := []models.TVSummary{}
	for rows.Next() {
		var s models.TVSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.PosterPath, &s.FirstAirDate, &s.VoteAverage); err != nil {
			return nil, fmt.Errorf("scan followed tv: %w", err)
		}
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

// DeleteAllForUser removes every collection row for a user.
func (r *CollectionsRepository) DeleteAllForUser(userID string) error {
	if _, err := r.db.Exec(`DELETE FROM favorite_movies WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear favorite movies: %w", err)
	}
	if _, err := r.db.Exec(`DELETE FROM followed_tv WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear followed tv: %w", err)
	}
	return nil
}
