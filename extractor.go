package medreg

// ExtractResult holds the main content of a profile page.
type ExtractResult struct {
	// Title is the page title from metadata.
	Title string

	// ContentHTML is the main content as clean HTML, without navigation,
	// footers or cookie banners.
	ContentHTML string
}

// Extractor isolates the main content of an HTML page.
type Extractor interface {
	// Extract processes raw HTML fetched from pageURL. pageURL resolves
	// relative links and may be empty.
	Extract(html, pageURL string) (*ExtractResult, error)
}
