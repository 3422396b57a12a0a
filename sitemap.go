package medreg

import "strings"

// Sitemap is a parsed sitemap document.
type Sitemap struct {
	// Index is true for <sitemapindex> documents whose locations are
	// child sitemaps.
	Index bool

	// Locations holds the trimmed, non-empty <loc> values in document order.
	Locations []string
}

// SitemapParser parses sitemap XML.
type SitemapParser interface {
	ParseSitemap(body []byte) (*Sitemap, error)
}

// Containing returns the locations containing substr.
func (s *Sitemap) Containing(substr string) []string {
	return s.filter(func(loc string) bool { return strings.Contains(loc, substr) })
}

// WithPrefix returns the locations starting with prefix.
func (s *Sitemap) WithPrefix(prefix string) []string {
	return s.filter(func(loc string) bool { return strings.HasPrefix(loc, prefix) })
}

func (s *Sitemap) filter(keep func(string) bool) []string {
	var out []string
	for _, loc := range s.Locations {
		if keep(loc) {
			out = append(out, loc)
		}
	}
	return out
}
