package metadata

import "strings"

// DefaultImageBaseURL is the image CDN prefix for relative poster and
// profile paths.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

// imageSizes is the fixed size-class enum the CDN serves.
var imageSizes = map[string]struct{}{
	"w92":      {},
	"w185":     {},
	"w342":     {},
	"w500":     {},
	"w780":     {},
	"original": {},
}

// IsValidImageSize reports whether size is one of the CDN's size classes.
func IsValidImageSize(size string) bool {
	_, ok := imageSizes[size]
	return ok
}

// ImageURL builds the absolute CDN URL for a relative image path like
// "/xyz.jpg". Empty paths and unknown sizes yield "".
func ImageURL(baseURL, size, path string) string {
	if path == "" || !IsValidImageSize(size) {
		return ""
	}
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + "/" + size + path
}
