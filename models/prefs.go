package models

// CookiePrefs is a visitor's cookie-consent selection. Absence of a stored
// record is distinguished from "all declined" so the client can show the
// first-visit banner.
type CookiePrefs struct {
	Functional bool `json:"functional"`
	Analytics  bool `json:"analytics"`
	Ads        bool `json:"ads"`
}

// DefaultCookiePrefs returns the selection applied until the visitor chooses.
func DefaultCookiePrefs() CookiePrefs {
	return CookiePrefs{Functional: true, Analytics: false, Ads: false}
}
