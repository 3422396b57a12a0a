package mock

import "github.com/fwojciec/medreg"

var _ medreg.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of medreg.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*medreg.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*medreg.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}
