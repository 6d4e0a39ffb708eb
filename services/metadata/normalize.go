package metadata

import (
	"strings"

	"sala2/models"
)

// Normalize converts a heterogeneous movie/tv/person record into the uniform
// display item the client renders. The localized name wins over the
// original-language one, never both. Empty-string dates become absent so
// downstream "is a date" checks never see "".
func Normalize(r models.MediaRecord) models.MediaItem {
	item := models.MediaItem{
		ID:          r.ID,
		MediaType:   r.MediaType,
		PosterPath:  r.PosterPath,
		VoteAverage: r.VoteAverage,
		Popularity:  r.Popularity,
	}

	switch r.MediaType {
	case models.MediaTypeTV:
		item.Name = firstNonEmpty(r.Name, r.OriginalName)
		item.FirstAirDate = strings.TrimSpace(r.FirstAirDate)
	case models.MediaTypePerson:
		item.Name = firstNonEmpty(r.Name, r.OriginalName)
		item.ProfilePath = r.ProfilePath
	default:
		item.Title = firstNonEmpty(r.Title, r.OriginalTitle)
		item.ReleaseDate = strings.TrimSpace(r.ReleaseDate)
	}

	return item
}

// NormalizeAll maps Normalize over a record list.
func NormalizeAll(records []models.MediaRecord) []models.MediaItem {
	items := make([]models.MediaItem, 0, len(records))
	for _, r := range records {
		items = append(items, Normalize(r))
	}
	return items
}

// DedupeBy removes duplicate entries by key, preserving the first occurrence
// per key in original order.
func DedupeBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
