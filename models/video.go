package models

// VideoAsset describes one playable video attached to a title. Only assets
// hosted on YouTube are playable by the client. Fetched fresh per detail-page
// load and never persisted.
type VideoAsset struct {
	Key          string `json:"key"`
	Name         string `json:"name,omitempty"`
	Site         string `json:"site"`
	Type         string `json:"type"`
	Official     bool   `json:"official"`
	Size         int    `json:"size"`
	PublishedAt  string `json:"published_at,omitempty"`
	LanguageCode string `json:"iso_639_1,omitempty"`
}

// VideoList is the videos sub-resource of a detail response.
type VideoList struct {
	Results []VideoAsset `json:"results"`
}
