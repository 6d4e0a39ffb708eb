package database

import (
	"path/filepath"
	"testing"

	"sala2/models"
)

// setupTestCollectionsRepo creates a test database and collections repository.
func setupTestCollectionsRepo(t *testing.T) *CollectionsRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewCollectionsRepository(db.Connection())
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func testMovie(id int64, title string) models.MovieSummary {
	return models.MovieSummary{ID: id, Title: title}
}

func testShow(id int64, name string) models.TVSummary {
	return models.TVSummary{ID: id, Name: name}
}

func TestAddAndListMovies(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	err := repo.AddMovie("user-1", testMovie(603, "The Matrix"))
	if err != nil {
		t.Fatalf("AddMovie failed: %v", err)
	}
	if err := repo.AddMovie("user-1", testMovie(604, "The Matrix Reloaded")); err != nil {
		t.Fatalf("AddMovie failed: %v", err)
	}

	movies, err := repo.ListMovies("user-1")
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
}

func TestHasMovie(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	has, err := repo.HasMovie("user-1", 603)
	if err != nil {
		t.Fatalf("HasMovie failed: %v", err)
	}
	if has {
		t.Error("expected movie to be absent")
	}

	repo.AddMovie("user-1", testMovie(603, "The Matrix"))

	has, err = repo.HasMovie("user-1", 603)
	if err != nil {
		t.Fatalf("HasMovie failed: %v", err)
	}
	if !has {
		t.Error("expected movie to be present")
	}
}

func TestRemoveMovie(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	repo.AddMovie("user-1", testMovie(603, "The Matrix"))

	if err := repo.RemoveMovie("user-1", 603); err != nil {
		t.Fatalf("RemoveMovie failed: %v", err)
	}

	has, _ := repo.HasMovie("user-1", 603)
	if has {
		t.Error("expected movie to be removed")
	}
}

func TestMoviesAreScopedPerUser(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	repo.AddMovie("user-1", testMovie(603, "The Matrix"))

	movies, err := repo.ListMovies("user-2")
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("expected no movies for other user, got %d", len(movies))
	}
}

func TestMoviePreservesOptionalFields(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	movie := testMovie(603, "The Matrix")
	movie.PosterPath = strPtr("/matrix.jpg")
	movie.VoteAverage = floatPtr(8.2)
	movie.ReleaseDate = "1999-03-31"
	repo.AddMovie("user-1", movie)

	movies, err := repo.ListMovies("user-1")
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	got := movies[0]
	if got.PosterPath == nil || *got.PosterPath != "/matrix.jpg" {
		t.Error("expected poster path to round-trip")
	}
	if got.VoteAverage == nil || *got.VoteAverage != 8.2 {
		t.Error("expected vote average to round-trip")
	}
	if got.ReleaseDate != "1999-03-31" {
		t.Errorf("expected release date to round-trip, got %q", got.ReleaseDate)
	}
}

func TestMovieWithoutOptionalFields(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	repo.AddMovie("user-1", testMovie(603, "The Matrix"))

	movies, _ := repo.ListMovies("user-1")
	if movies[0].PosterPath != nil {
		t.Error("expected nil poster path")
	}
	if movies[0].VoteAverage != nil {
		t.Error("expected nil vote average")
	}
}

func TestAddAndRemoveTV(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	if err := repo.AddTV("user-1", testShow(1399, "Game of Thrones")); err != nil {
		t.Fatalf("AddTV failed: %v", err)
	}

	has, err := repo.HasTV("user-1", 1399)
	if err != nil {
		t.Fatalf("HasTV failed: %v", err)
	}
	if !has {
		t.Error("expected show to be present")
	}

	if err := repo.RemoveTV("user-1", 1399); err != nil {
		t.Fatalf("RemoveTV failed: %v", err)
	}

	shows, err := repo.ListTV("user-1")
	if err != nil {
		t.Fatalf("ListTV failed: %v", err)
	}
	if len(shows) != 0 {
		t.Errorf("expected no shows, got %d", len(shows))
	}
}

func TestDeleteAllForUser(t *testing.T) {
	repo := setupTestCollectionsRepo(t)

	repo.AddMovie("user-1", testMovie(603, "The Matrix"))
	repo.AddTV("user-1", testShow(1399, "Game of Thrones"))
	repo.AddMovie("user-2", testMovie(604, "The Matrix Reloaded"))

	if err := repo.DeleteAllForUser("user-1"); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}

	movies, _ := repo.ListMovies("user-1")
	shows, _ := repo.ListTV("user-1")
	if len(movies) != 0 || len(shows) != 0 {
		t.Error("expected user-1 collections to be empty")
	}

	kept, _ := repo.ListMovies("user-2")
	if len(kept) != 1 {
		t.Error("expected user-2 collection to be untouched")
	}
}
