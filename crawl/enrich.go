package crawl

import (
	"fmt"

	"github.com/fwojciec/medreg"
)

// FieldLLMContent is the record field holding the page's main content as
// Markdown.
const FieldLLMContent = "llm_content"

// Ensure ContentEnricher implements medreg.Enricher at compile time.
var _ medreg.Enricher = (*ContentEnricher)(nil)

// ContentEnricher fills an empty content field with the main content of the
// profile page. Records that do not declare the field are left alone, as
// are records whose field is already set.
type ContentEnricher struct {
	Extractor medreg.Extractor
	Converter medreg.Converter

	// Field defaults to FieldLLMContent.
	Field string
}

// Enrich extracts and converts the response body into rec.
func (e *ContentEnricher) Enrich(resp *medreg.Response, rec medreg.Record) error {
	field := e.Field
	if field == "" {
		field = FieldLLMContent
	}
	v, ok := rec[field]
	if !ok {
		return nil
	}
	if s, isString := v.(string); v != nil && (!isString || s != "") {
		return nil
	}

	extracted, err := e.Extractor.Extract(string(resp.Body), resp.URL)
	if err != nil {
		return fmt.Errorf("extract %s: %w", resp.URL, err)
	}
	if extracted.ContentHTML == "" {
		return nil
	}
	md, err := e.Converter.Convert(extracted.ContentHTML, resp.URL)
	if err != nil {
		return fmt.Errorf("convert %s: %w", resp.URL, err)
	}
	rec[field] = md
	return nil
}
