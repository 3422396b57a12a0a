package medreg

// Mode selects how matched text nodes are reduced to a single value.
type Mode int

// Extraction modes.
const (
	// ModeTrim returns the first match, trimmed.
	ModeTrim Mode = iota
	// ModeCollapse returns the first match with all internal whitespace and
	// line breaks collapsed to single spaces. Used for name fields.
	ModeCollapse
	// ModeJoin returns all matches trimmed, empty ones discarded, joined with ", ".
	ModeJoin
	// ModeLines splits the first matching element on <br> and joins the
	// non-empty lines with ", ".
	ModeLines
)

// ListSeparator joins the values of list-valued fields.
const ListSeparator = ", "

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeTrim:
		return "single-trimmed"
	case ModeCollapse:
		return "single-normalized-whitespace"
	case ModeJoin:
		return "joined-list"
	case ModeLines:
		return "line-list"
	}
	return "unknown"
}

// Locator is a declarative reference into a parsed document: an XPath
// expression paired with an extraction mode. Locators are stateless and
// reused across documents of the same adapter.
type Locator struct {
	Path string
	Mode Mode
}

// Trimmed returns a single-trimmed locator for path.
func Trimmed(path string) Locator { return Locator{Path: path, Mode: ModeTrim} }

// Collapsed returns a single-normalized-whitespace locator for path.
func Collapsed(path string) Locator { return Locator{Path: path, Mode: ModeCollapse} }

// Joined returns a joined-list locator for path.
func Joined(path string) Locator { return Locator{Path: path, Mode: ModeJoin} }

// Lines returns a locator splitting the matched element on <br>.
func Lines(path string) Locator { return Locator{Path: path, Mode: ModeLines} }

// Field maps a record field name to the locator that produces it.
type Field struct {
	Name    string
	Locator Locator
}

// Document is a parsed HTML document, or a node-scoped view into one.
type Document interface {
	// Extract evaluates the locator and reduces the matches according to its
	// mode. Returns "" when nothing matches; absence is not an error.
	Extract(loc Locator) string

	// Select returns node-scoped documents for every element matching path.
	// Relative paths (".//h3") evaluated against a scoped document stay
	// within its node.
	Select(path string) []Document
}

// DocumentParser parses raw HTML into a Document.
type DocumentParser interface {
	ParseHTML(body []byte) (Document, error)

	// Validate reports the first field whose locator the parser cannot
	// evaluate.
	Validate(fields []Field) error
}

// ExtractFields interprets a field→locator table against doc. Every field
// appears in the returned record; missing values are "".
func ExtractFields(doc Document, fields []Field) Record {
	rec := make(Record, len(fields))
	for _, f := range fields {
		rec[f.Name] = doc.Extract(f.Locator)
	}
	return rec
}
