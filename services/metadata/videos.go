package metadata

import (
	"sort"
	"time"

	"sala2/models"
)

// videoTypeOrder ranks video types, best first. Unknown types sink to the
// bottom.
var videoTypeOrder = map[string]int{
	"Trailer":           0,
	"Teaser":            1,
	"Clip":              2,
	"Featurette":        3,
	"Behind the Scenes": 4,
	"Bloopers":          5,
}

func videoTypeRank(t string) int {
	if rank, ok := videoTypeOrder[t]; ok {
		return rank
	}
	return 999
}

// languageRank prefers Spanish, then English, then anything else.
func languageRank(code string) int {
	switch code {
	case "es":
		return 0
	case "en":
		return 1
	default:
		return 2
	}
}

// publishedAtUnix parses the publish timestamp. Missing or unparseable dates
// collapse to epoch 0 so they rank last.
func publishedAtUnix(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// SelectBestVideo picks the single best playable video from a heterogeneous
// asset list. Only YouTube assets with a playback key qualify; the remainder
// are ordered by type rank, official flag, pixel-size class, publish date and
// language preference, in that order. Returns nil when nothing is playable.
func SelectBestVideo(assets []models.VideoAsset) *models.VideoAsset {
	playable := make([]models.VideoAsset, 0, len(assets))
	for _, a := range assets {
		if a.Site == "YouTube" && a.Key != "" {
			playable = append(playable, a)
		}
	}
	if len(playable) == 0 {
		return nil
	}

	sort.SliceStable(playable, func(i, j int) bool {
		a, b := playable[i], playable[j]
		if ra, rb := videoTypeRank(a.Type), videoTypeRank(b.Type); ra != rb {
			return ra < rb
		}
		if a.Official != b.Official {
			return a.Official
		}
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		if pa, pb := publishedAtUnix(a.PublishedAt), publishedAtUnix(b.PublishedAt); pa != pb {
			return pa > pb
		}
		return languageRank(a.LanguageCode) < languageRank(b.LanguageCode)
	})

	best := playable[0]
	return &best
}
