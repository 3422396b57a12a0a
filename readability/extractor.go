package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/medreg"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements medreg.Extractor at compile time.
var _ medreg.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to isolate the main content of profile
// pages. Relative links are resolved against the page URL.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML, pageURL string) (*medreg.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, medreg.Errorf(medreg.EINVALID, "empty HTML input")
	}

	var u *url.URL
	if pageURL != "" {
		var err error
		if u, err = url.Parse(pageURL); err != nil {
			return nil, medreg.Errorf(medreg.EINVALID, "invalid page URL %q", pageURL)
		}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return nil, err
	}

	return &medreg.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
