package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/medreg"
)

// ApothekerkammerBaseURL is the pharmacy finder of the Hamburg chamber of
// pharmacists.
const ApothekerkammerBaseURL = "https://portal.apothekerkammer-hamburg.de"

// Compile-time interface verification.
var _ medreg.Adapter = (*Apothekerkammer)(nil)

// Apothekerkammer crawls the Hamburg pharmacy finder. Every listing row is
// a record; pagination follows the "next" anchor.
type Apothekerkammer struct {
	BaseURL string
	Parsers Parsers
}

// NewApothekerkammer creates the adapter with production defaults.
func NewApothekerkammer(p Parsers) *Apothekerkammer {
	return &Apothekerkammer{BaseURL: ApothekerkammerBaseURL, Parsers: p}
}

// Name implements medreg.Adapter.
func (a *Apothekerkammer) Name() string { return "apothekerkammer-hamburg" }

// Settings implements medreg.Adapter.
func (a *Apothekerkammer) Settings() medreg.Settings {
	return medreg.Settings{
		Concurrency:          16,
		ConcurrencyPerDomain: 16,
		Delay:                500 * time.Millisecond,
		RetryTimes:           2,
		UserAgent:            UserAgent,
		AllowedStatus:        []int{http.StatusNotFound},
	}
}

// Discover implements medreg.Adapter.
func (a *Apothekerkammer) Discover() []*medreg.Request {
	base := a.BaseURL
	if base == "" {
		base = ApothekerkammerBaseURL
	}
	return []*medreg.Request{a.listingRequest(strings.TrimRight(base, "/") + "/apothekenfinder/")}
}

const (
	apothekerkammerRows = `//div[@class="container mt-3"]//div[@class="searchhit-icon searchhit-icon-site"]/parent::div`
	apothekerkammerNext = `//a[@class="next page-numbers"]/@href`
)

var apothekerkammerFields = []medreg.Field{
	{Name: "name", Locator: medreg.Trimmed(`.//h3/a/text()`)},
	{Name: "address", Locator: medreg.Joined(`.//label[text()="Anschrift"]/parent::div/following-sibling::div[1]/span[1]/text()`)},
	{Name: "phone", Locator: medreg.Trimmed(`.//label[text()="Telefon"]/parent::div/following-sibling::div/span/text()`)},
	{Name: "fax", Locator: medreg.Trimmed(`.//label[text()="Fax"]/parent::div/following-sibling::div/span/text()`)},
	{Name: "email", Locator: medreg.Trimmed(`.//label[text()="E-Mail"]/parent::div/following-sibling::div/span/a/text()`)},
	{Name: "website", Locator: medreg.Trimmed(`.//label[text()="Internet"]/parent::div/following-sibling::div/span/a/@href`)},
	{Name: "url", Locator: medreg.Trimmed(`.//h3/a/@href`)},
}

// Fields returns the row locators together with the row and pagination
// paths.
func (a *Apothekerkammer) Fields() []medreg.Field {
	return append([]medreg.Field{
		{Name: "rows", Locator: medreg.Trimmed(apothekerkammerRows)},
		{Name: "next", Locator: medreg.Trimmed(apothekerkammerNext)},
	}, apothekerkammerFields...)
}

// ExtractRecord implements medreg.Adapter for a single listing row. The
// row's link is resolved against pageURL.
func (a *Apothekerkammer) ExtractRecord(row medreg.Document, pageURL string) medreg.Record {
	rec := medreg.ExtractFields(row, apothekerkammerFields)
	rec[medreg.FieldURL] = resolve(pageURL, rec.String(medreg.FieldURL))
	return rec
}

// NextPage implements medreg.Adapter. A page without listing rows ends
// pagination even when it still links a next page.
func (a *Apothekerkammer) NextPage(resp *medreg.Response) (*medreg.Request, error) {
	doc, err := a.Parsers.parseHTML(resp.Body)
	if err != nil {
		return nil, err
	}
	return a.nextPage(doc, resp.URL), nil
}

func (a *Apothekerkammer) nextPage(doc medreg.Document, pageURL string) *medreg.Request {
	if len(doc.Select(apothekerkammerRows)) == 0 {
		return nil
	}
	href := doc.Extract(medreg.Trimmed(apothekerkammerNext))
	if href == "" {
		return nil
	}
	return a.listingRequest(resolve(pageURL, href))
}

func (a *Apothekerkammer) parseListing(_ context.Context, resp *medreg.Response) (*medreg.Result, error) {
	doc, err := a.Parsers.parseHTML(resp.Body)
	if err != nil {
		return nil, err
	}

	res := &medreg.Result{}
	for _, row := range doc.Select(apothekerkammerRows) {
		res.Records = append(res.Records, a.ExtractRecord(row, resp.URL))
	}
	if next := a.nextPage(doc, resp.URL); next != nil {
		res.Requests = append(res.Requests, next)
	}
	return res, nil
}

func (a *Apothekerkammer) listingRequest(pageURL string) *medreg.Request {
	return &medreg.Request{
		URL: pageURL,
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.9,de;q=0.7",
			"Cache-Control":             "max-age=0",
			"Upgrade-Insecure-Requests": "1",
			"User-Agent":                UserAgent,
		},
		Priority: 1,
		Callback: a.parseListing,
	}
}

// resolve makes ref absolute against base. Unparseable input is returned
// unchanged.
func resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
