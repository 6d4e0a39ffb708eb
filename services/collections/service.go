package collections

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"sala2/internal/database"
	"sala2/models"
)

var (
	// ErrNotAuthenticated signals a collection mutation without a logged-in
	// user. Callers branch to a login prompt instead of a generic failure.
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrInvalidMovie = errors.New("movie id and title are required")
	ErrInvalidShow  = errors.New("tv id and name are required")
)

// Service manages per-user favorite movies and followed TV shows.
type Service struct {
	repo *database.CollectionsRepository
}

// NewService creates a collections service on top of the SQLite repository.
func NewService(repo *database.CollectionsRepository) *Service {
	return &Service{repo: repo}
}

// ToggleMovie adds the movie to the user's favorites if absent and removes it
// if present. Returns true when the movie ends up in the collection.
func (s *Service) ToggleMovie(userID string, movie models.MovieSummary) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrNotAuthenticated
	}
	if movie.ID == 0 || strings.TrimSpace(movie.Title) == "" {
		return false, ErrInvalidMovie
	}

	has, err := s.repo.HasMovie(userID, movie.ID)
	if err != nil {
		return false, err
	}

	if has {
		if err := s.repo.RemoveMovie(userID, movie.ID); err != nil {
			return false, err
		}
		log.Printf("[collections] user %s removed movie %d", userID, movie.ID)
		return false, nil
	}

	if err := s.repo.AddMovie(userID, movie); err != nil {
		return false, err
	}
	log.Printf("[collections] user %s added movie %d", userID, movie.ID)
	return true, nil
}

// ToggleTV adds the show to the user's followed list if absent and removes it
// if present. Returns true when the show ends up in the collection.
func (s *Service) ToggleTV(userID string, show models.TVSummary) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrNotAuthenticated
	}
	if show.ID == 0 || strings.TrimSpace(show.Name) == "" {
		return false, ErrInvalidShow
	}

	has, err := s.repo.HasTV(userID, show.ID)
	if err != nil {
		return false, err
	}

	if has {
		if err := s.repo.RemoveTV(userID, show.ID); err != nil {
			return false, err
		}
		log.Printf("[collections] user %s removed tv %d", userID, show.ID)
		return false, nil
	}

	if err := s.repo.AddTV(userID, show); err != nil {
		return false, err
	}
	log.Printf("[collections] user %s added tv %d", userID, show.ID)
	return true, nil
}

// Get returns everything the user has favorited or followed.
func (s *Service) Get(userID string) (models.UserCollections, error) {
	if strings.TrimSpace(userID) == "" {
		return models.UserCollections{}, ErrNotAuthenticated
	}

	movies, err := s.repo.ListMovies(userID)
	if err != nil {
		return models.UserCollections{}, fmt.Errorf("load movie collection: %w", err)
	}

	shows, err := s.repo.ListTV(userID)
	if err != nil {
		return models.UserCollections{}, fmt.Errorf("load tv collection: %w", err)
	}

	return models.UserCollections{Movies: movies, TV: shows}, nil
}

// Clear removes all collection entries for the user.
func (s *Service) Clear(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrNotAuthenticated
	}
	return s.repo.DeleteAllForUser(userID)
}
