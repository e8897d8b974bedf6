package scraper

import "net/url"

// Source is one configured subscription location. The URL may embed basic
// auth credentials; Name never does.
type Source struct {
	Name string
	URL  string
}

func NewSources(urls []string) []Source {
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		sources = append(sources, Source{Name: RedactURL(u), URL: u})
	}
	return sources
}

// RedactURL drops credentials and the query string so a URL can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
