package mock

import "github.com/fwojciec/medreg"

var (
	_ medreg.DocumentParser = (*DocumentParser)(nil)
	_ medreg.SitemapParser  = (*SitemapParser)(nil)
)

// DocumentParser is a mock implementation of medreg.DocumentParser.
type DocumentParser struct {
	ParseHTMLFn func(body []byte) (medreg.Document, error)
	ValidateFn  func(fields []medreg.Field) error
}

func (p *DocumentParser) ParseHTML(body []byte) (medreg.Document, error) {
	return p.ParseHTMLFn(body)
}

func (p *DocumentParser) Validate(fields []medreg.Field) error {
	return p.ValidateFn(fields)
}

// SitemapParser is a mock implementation of medreg.SitemapParser.
type SitemapParser struct {
	ParseSitemapFn func(body []byte) (*medreg.Sitemap, error)
}

func (p *SitemapParser) ParseSitemap(body []byte) (*medreg.Sitemap, error) {
	return p.ParseSitemapFn(body)
}
