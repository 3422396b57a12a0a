// Package adapter holds the per-site crawling strategies: where discovery
// starts, which locators build a record and how pagination proceeds.
package adapter

import (
	"context"
	"strings"

	"github.com/fwojciec/medreg"
)

// UserAgent is the browser identity sent by all adapters.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

// navigationHeaders returns the headers of a top-level browser navigation.
func navigationHeaders(fetchSite string) map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"Accept-Language":           "en-US,en;q=0.9,pl;q=0.8,de;q=0.7,sr;q=0.6,bs;q=0.5,nl;q=0.4",
		"Cache-Control":             "max-age=0",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            fetchSite,
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
		"User-Agent":                UserAgent,
		"sec-ch-ua":                 `"Google Chrome";v="143", "Chromium";v="143", "Not A(Brand";v="24"`,
		"sec-ch-ua-mobile":          "?0",
		"sec-ch-ua-platform":        `"Linux"`,
	}
}

// Parsers turn response bodies into documents and sitemaps.
type Parsers struct {
	HTML    medreg.DocumentParser
	Sitemap medreg.SitemapParser
}

func (p Parsers) parseHTML(body []byte) (medreg.Document, error) {
	if p.HTML == nil {
		return nil, medreg.Errorf(medreg.EINTERNAL, "no HTML parser configured")
	}
	return p.HTML.ParseHTML(body)
}

func (p Parsers) parseSitemap(body []byte) (*medreg.Sitemap, error) {
	if p.Sitemap == nil {
		return nil, medreg.Errorf(medreg.EINTERNAL, "no sitemap parser configured")
	}
	return p.Sitemap.ParseSitemap(body)
}

// recordFunc builds one record from a parsed page.
type recordFunc func(doc medreg.Document, pageURL string) medreg.Record

// profileCallback parses a profile page into exactly one record.
func (p Parsers) profileCallback(extract recordFunc) medreg.Callback {
	return func(_ context.Context, resp *medreg.Response) (*medreg.Result, error) {
		doc, err := p.parseHTML(resp.Body)
		if err != nil {
			return nil, err
		}
		return &medreg.Result{Records: []medreg.Record{extract(doc, resp.URL)}}, nil
	}
}

// sitemapCallback parses a sitemap, keeps the locations selected by pick
// and turns each into a request.
func (p Parsers) sitemapCallback(pick func(*medreg.Sitemap) []string, next func(loc string) *medreg.Request) medreg.Callback {
	return func(_ context.Context, resp *medreg.Response) (*medreg.Result, error) {
		sm, err := p.parseSitemap(resp.Body)
		if err != nil {
			return nil, err
		}
		res := &medreg.Result{}
		for _, loc := range pick(sm) {
			res.Requests = append(res.Requests, next(loc))
		}
		return res, nil
	}
}

// nullIfEmpty maps "" to nil so the field is reported as absent.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// dtValue returns an XPath to the first <dd> following the <dt> whose text
// contains label.
func dtValue(label string) string {
	return `//dt[contains(normalize-space(.), "` + label + `")]/following-sibling::dd[1]`
}

// trimPrefix removes prefix and surrounding whitespace if s starts with it,
// returning "" otherwise.
func trimPrefix(s, prefix string) string {
	if !strings.HasPrefix(s, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(s, prefix))
}
