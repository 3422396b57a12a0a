// Package etree parses sitemap XML using beevik/etree.
package etree

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/medreg"
)

// Ensure SitemapParser implements medreg.SitemapParser.
var _ medreg.SitemapParser = (*SitemapParser)(nil)

// SitemapParser parses <urlset> and <sitemapindex> documents.
type SitemapParser struct{}

// NewSitemapParser creates a new SitemapParser.
func NewSitemapParser() *SitemapParser {
	return &SitemapParser{}
}

// ParseSitemap implements medreg.SitemapParser.
func (p *SitemapParser) ParseSitemap(body []byte) (*medreg.Sitemap, error) {
	return ParseSitemap(body)
}

// ParseSitemap extracts <loc> values from a sitemap or sitemap index.
// Namespaces and prefixes are ignored; locations are trimmed and empty
// ones skipped.
func ParseSitemap(body []byte) (*medreg.Sitemap, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "parsing sitemap XML: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, medreg.Errorf(medreg.EINVALID, "empty sitemap XML")
	}

	sm := &medreg.Sitemap{Index: root.Tag == "sitemapindex"}
	collectLocations(root, &sm.Locations)
	return sm, nil
}

// collectLocations walks the tree in document order. Sitemaps in the wild
// nest <loc> under <url>, <sitemap> or vendor extensions, so every <loc>
// counts regardless of depth.
func collectLocations(el *etree.Element, out *[]string) {
	for _, child := range el.ChildElements() {
		if child.Tag == "loc" {
			if loc := strings.TrimSpace(child.Text()); loc != "" {
				*out = append(*out, loc)
			}
			continue
		}
		collectLocations(child, out)
	}
}
