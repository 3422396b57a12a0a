package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/medreg"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements medreg.Extractor at compile time.
var _ medreg.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to isolate the main content of profile
// pages.
type Extractor struct {
	// IncludeLinks keeps anchors in the extracted content. Profile pages
	// carry booking and clinic links worth keeping.
	IncludeLinks bool
}

// NewExtractor creates a new Extractor that keeps links.
func NewExtractor() *Extractor {
	return &Extractor{IncludeLinks: true}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML, pageURL string) (*medreg.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, medreg.Errorf(medreg.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   e.IncludeLinks,
	}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, medreg.Errorf(medreg.EINVALID, "invalid page URL %q", pageURL)
		}
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &medreg.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
