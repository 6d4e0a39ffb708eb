package metadata

import (
	"sort"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"

	"sala2/models"
)

// SplitFilmography partitions a person's combined credit list into released
// and upcoming titles, movies and TV separately. The two upcoming sublists
// are concatenated into a unified coming-soon section (movies first). Input
// is never mutated.
func SplitFilmography(credits []models.CombinedCredit) models.Filmography {
	return SplitFilmographyAt(credits, time.Now())
}

// SplitFilmographyAt is SplitFilmography with an injectable clock.
func SplitFilmographyAt(credits []models.CombinedCredit, now time.Time) models.Filmography {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	movies, moviesUpcoming := splitByRelease(credits, models.MediaTypeMovie, startOfDay)
	tv, tvUpcoming := splitByRelease(credits, models.MediaTypeTV, startOfDay)

	comingSoon := make([]models.MediaItem, 0, len(moviesUpcoming)+len(tvUpcoming))
	comingSoon = append(comingSoon, moviesUpcoming...)
	comingSoon = append(comingSoon, tvUpcoming...)

	return models.Filmography{
		Movies:     movies,
		TV:         tv,
		ComingSoon: comingSoon,
	}
}

// splitByRelease filters credits to one media type, deduplicates repeat
// appearances (one title may carry several character roles), classifies each
// title as released or upcoming and ranks both partitions. A title with no
// date is always considered released.
func splitByRelease(credits []models.CombinedCredit, mediaType models.MediaType, startOfDay time.Time) (current, upcoming []models.MediaItem) {
	filtered := make([]models.CombinedCredit, 0, len(credits))
	for _, c := range credits {
		if c.MediaType == mediaType {
			filtered = append(filtered, c)
		}
	}

	unique := DedupeBy(filtered, func(c models.CombinedCredit) int64 { return c.ID })

	for _, c := range unique {
		item := creditToItem(c)
		if releasesAfter(item.Date(), startOfDay) {
			upcoming = append(upcoming, item)
		} else {
			current = append(current, item)
		}
	}

	rankByVoteAndDate(current)
	rankByVoteAndDate(upcoming)
	return current, upcoming
}

func creditToItem(c models.CombinedCredit) models.MediaItem {
	item := models.MediaItem{
		ID:          c.ID,
		MediaType:   c.MediaType,
		PosterPath:  c.PosterPath,
		VoteAverage: c.VoteAverage,
		Popularity:  c.Popularity,
	}
	if c.MediaType == models.MediaTypeTV {
		item.Name = firstNonEmpty(c.Name, c.OriginalName)
		item.FirstAirDate = strings.TrimSpace(c.FirstAirDate)
	} else {
		item.Title = firstNonEmpty(c.Title, c.OriginalTitle)
		item.ReleaseDate = strings.TrimSpace(c.ReleaseDate)
	}
	return item
}

// releasesAfter reports whether the date string falls strictly after the
// start of the current day. Unparseable or missing dates report false.
func releasesAfter(date string, startOfDay time.Time) bool {
	if date == "" {
		return false
	}
	t, err := time.ParseInLocation("2006-01-02", date, startOfDay.Location())
	if err != nil {
		return false
	}
	return t.After(startOfDay)
}

// rankByVoteAndDate orders items by vote average descending (missing score
// sorts after every real score, including 0.0), then date descending (missing
// date last), then display name ascending as a deterministic final tiebreak.
func rankByVoteAndDate(items []models.MediaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if va, vb := voteOrMissing(a), voteOrMissing(b); va != vb {
			return va > vb
		}
		if da, db := dateUnix(a.Date()), dateUnix(b.Date()); da != db {
			return da > db
		}
		return foldName(a.DisplayName()) < foldName(b.DisplayName())
	})
}

// voteOrMissing maps an absent vote average to -1 so it sorts below any real
// score, 0.0 included.
func voteOrMissing(item models.MediaItem) float64 {
	if item.VoteAverage == nil {
		return -1
	}
	return *item.VoteAverage
}

func dateUnix(date string) int64 {
	if date == "" {
		return 0
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// foldName lowers and strips accents so "Álamo" and "alamo" compare equal.
func foldName(name string) string {
	return unidecode.Unidecode(strings.ToLower(name))
}
