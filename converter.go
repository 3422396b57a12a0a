package medreg

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms clean HTML, e.g. from an Extractor, into Markdown.
	// Relative links are made absolute against pageURL when it is set.
	Convert(html, pageURL string) (string, error)
}

// Enricher fills derived fields of a record from the page it came from.
// It runs on worker goroutines and must not retain rec.
type Enricher interface {
	Enrich(resp *Response, rec Record) error
}
