// Package htmlquery implements medreg.Document with XPath locators
// evaluated by antchfx/htmlquery.
package htmlquery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/goquery"
	"golang.org/x/net/html"
)

// Compile-time interface verification.
var (
	_ medreg.Document       = (*Document)(nil)
	_ medreg.DocumentParser = (*Parser)(nil)
)

// Parser parses HTML into XPath-queryable documents.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseHTML implements medreg.DocumentParser.
func (p *Parser) ParseHTML(body []byte) (medreg.Document, error) {
	return Parse(body)
}

// Validate implements medreg.DocumentParser. It compiles every locator and
// reports the first invalid expression.
func (p *Parser) Validate(fields []medreg.Field) error {
	for _, f := range fields {
		if _, err := xpath.Compile(f.Locator.Path); err != nil {
			return fmt.Errorf("field %q: invalid locator %q: %w", f.Name, f.Locator.Path, err)
		}
	}
	return nil
}

// Parse parses an HTML document.
func Parse(body []byte) (*Document, error) {
	root, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Document{node: root}, nil
}

// Document is a parsed HTML document or a node-scoped view into one.
type Document struct {
	node *html.Node
}

// Extract implements medreg.Document.
func (d *Document) Extract(loc medreg.Locator) string {
	nodes := d.query(loc.Path)
	if len(nodes) == 0 {
		return ""
	}

	switch loc.Mode {
	case medreg.ModeCollapse:
		return strings.Join(strings.Fields(nodeText(nodes[0])), " ")
	case medreg.ModeJoin:
		var parts []string
		for _, n := range nodes {
			if t := strings.TrimSpace(nodeText(n)); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, medreg.ListSeparator)
	case medreg.ModeLines:
		if nodes[0].Type != html.ElementNode {
			return strings.TrimSpace(nodeText(nodes[0]))
		}
		lines, err := goquery.NodeLines(nodes[0])
		if err != nil {
			return ""
		}
		return strings.Join(lines, medreg.ListSeparator)
	default:
		return strings.TrimSpace(nodeText(nodes[0]))
	}
}

// Select implements medreg.Document.
func (d *Document) Select(path string) []medreg.Document {
	var docs []medreg.Document
	for _, n := range d.query(path) {
		if n.Type == html.ElementNode || n.Type == html.DocumentNode {
			docs = append(docs, &Document{node: n})
		}
	}
	return docs
}

// query evaluates an XPath expression. Invalid expressions match nothing;
// Parser.Validate catches them up front.
func (d *Document) query(path string) []*html.Node {
	if d == nil || d.node == nil || path == "" {
		return nil
	}
	nodes, err := htmlquery.QueryAll(d.node, path)
	if err != nil {
		return nil
	}
	return nodes
}

// nodeText returns the string value of a matched node. Text nodes yield
// their data; elements and selected attributes yield their inner text.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	return htmlquery.InnerText(n)
}
