// Package goquery splits HTML fragments into text lines using goquery.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var breakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

// NodeLines returns the text lines of n's inner HTML, split on <br>.
// Tags are stripped, lines are trimmed and empty lines dropped.
func NodeLines(n *html.Node) ([]string, error) {
	inner, err := goquery.NewDocumentFromNode(n).Html()
	if err != nil {
		return nil, err
	}
	return SplitLines(inner)
}

// SplitLines splits an HTML fragment on <br> and returns the non-empty,
// trimmed text of each part.
func SplitLines(fragment string) ([]string, error) {
	var lines []string
	for _, part := range breakPattern.Split(fragment, -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(part))
		if err != nil {
			return nil, err
		}
		if text := strings.TrimSpace(doc.Text()); text != "" {
			lines = append(lines, text)
		}
	}
	return lines, nil
}
