package domain

// Preview is the summary card of an external page.
type Preview struct {
	URL         string
	Title       string
	Description string
	Image       string
	SiteName    string
}
