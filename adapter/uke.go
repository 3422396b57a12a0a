package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/medreg"
)

// UKE search defaults.
const (
	UKEBaseURL      = "https://www.uke.de"
	UKEPageSize     = 10000
	ukeSearchFormat = "%s/searchadapter/search?q=UKE+-+Arztprofil&p=%d&n=%d&t=RAW&f=json&q.template=ARZTPROFIL&q.language=de&hl.count=1&hl.size=300&hl.prefix=%%3Cmark%%3E&hl.suffix=%%3C/mark%%3E&p.url=https://www.uke.de/suchergebnisseite/suchergebnis-arztprofilseite.html?q=UKE+-+Arztprofil&p=0&l=de&t=1"
)

// Compile-time interface verification.
var _ medreg.Adapter = (*UKE)(nil)

// UKE crawls the physician profiles of the Universitätsklinikum
// Hamburg-Eppendorf. Profile URLs come from the site's JSON search API,
// which is paged with a page counter.
type UKE struct {
	BaseURL  string
	PageSize int
	Parsers  Parsers
	Logger   *slog.Logger
}

// NewUKE creates the UKE adapter with production defaults.
func NewUKE(p Parsers) *UKE {
	return &UKE{BaseURL: UKEBaseURL, PageSize: UKEPageSize, Parsers: p}
}

// Name implements medreg.Adapter.
func (a *UKE) Name() string { return "uke" }

// Settings implements medreg.Adapter.
func (a *UKE) Settings() medreg.Settings {
	return medreg.Settings{
		Concurrency:          16,
		ConcurrencyPerDomain: 16,
		Delay:                500 * time.Millisecond,
		RetryTimes:           3,
		Timeout:              180 * time.Second,
		UserAgent:            UserAgent,
	}
}

// Discover implements medreg.Adapter.
func (a *UKE) Discover() []*medreg.Request {
	return []*medreg.Request{a.searchRequest(1)}
}

var ukeFields = []medreg.Field{
	{Name: "name", Locator: medreg.Collapsed(`//div[@class="name"]/text()`)},
	{Name: "title", Locator: medreg.Trimmed(`//div[@class="title"]/text()`)},
	{Name: "department", Locator: medreg.Trimmed(`//div[@class="department"]/text()`)},
	{Name: "specialties", Locator: medreg.Joined(`//ul[@class="description"]/li/text()`)},
	{Name: "work_area", Locator: medreg.Joined(`//div[@class="main-contact-container "]//li//text()`)},
	{Name: "telephone", Locator: medreg.Trimmed(`//div[@class="contact-label"][contains(text(), "Telefon")]/following-sibling::div/*/text()`)},
	{Name: "fax", Locator: medreg.Trimmed(`//div[@class="contact-label"][contains(text(), "Telefax")]/following-sibling::div/*/text()`)},
	{Name: "email", Locator: medreg.Trimmed(`//div[@class="contact-label"][contains(text(), "E-Mail")]/following-sibling::div/*/text()`)},
	{Name: "location", Locator: medreg.Trimmed(`//div[contains(text(), "Standort")]/following-sibling::div//div[@class="contact-data"]/text()`)},
	{Name: "languages", Locator: medreg.Joined(`//div[contains(text(), "Sprachen")]/following-sibling::div//div[@class="contact-data"]/text()`)},
	{Name: "areas_of_expertise", Locator: medreg.Joined(`//h2[contains(text(), "Fachgebiete")]/following-sibling::ul[1]//span/text()`)},
	{Name: "areas_of_activity", Locator: medreg.Joined(`//h2[contains(text(), "Tätigkeitsschwerpunkte")]/following-sibling::ul[1]//span/text()`)},
}

// Fields returns the profile locators.
func (a *UKE) Fields() []medreg.Field { return ukeFields }

// ExtractRecord implements medreg.Adapter.
func (a *UKE) ExtractRecord(doc medreg.Document, pageURL string) medreg.Record {
	rec := medreg.ExtractFields(doc, ukeFields)
	rec[medreg.FieldURL] = pageURL
	return rec
}

// ukeSearch is the part of the search response that lists profiles.
type ukeSearch struct {
	Response struct {
		Hits []struct {
			URL string `json:"url"`
		} `json:"hits"`
	} `json:"response"`
}

// ukePaging is the optional size metadata of a search response.
type ukePaging struct {
	Response struct {
		NumFound   int `json:"numFound"`
		TotalPages int `json:"totalPages"`
	} `json:"response"`
}

// NextPage implements medreg.Adapter. It returns nil once a page yields no
// hits or the reported size says the last page has been fetched. Unreadable
// size metadata ends pagination without an error.
func (a *UKE) NextPage(resp *medreg.Response) (*medreg.Request, error) {
	var search ukeSearch
	if err := json.Unmarshal(resp.Body, &search); err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "uke: decoding search response: %v", err)
	}
	cursor := medreg.PageCursor{
		Page:     pageOf(resp.Request),
		PageSize: a.pageSize(),
		Returned: len(search.Response.Hits),
	}
	if cursor.Returned == 0 {
		return nil, nil
	}

	var paging ukePaging
	if err := json.Unmarshal(resp.Body, &paging); err != nil {
		a.logger().Warn("uke: unreadable paging metadata, stopping pagination", "url", resp.URL, "err", err)
		return nil, nil
	}
	cursor.NumFound = paging.Response.NumFound
	cursor.TotalPages = paging.Response.TotalPages

	next, ok := cursor.Next()
	if !ok {
		return nil, nil
	}
	return a.searchRequest(next), nil
}

func (a *UKE) parseSearch(_ context.Context, resp *medreg.Response) (*medreg.Result, error) {
	var search ukeSearch
	if err := json.Unmarshal(resp.Body, &search); err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "uke: decoding search response: %v", err)
	}

	res := &medreg.Result{}
	for _, hit := range search.Response.Hits {
		if hit.URL == "" {
			continue
		}
		res.Requests = append(res.Requests, &medreg.Request{
			URL:      hit.URL,
			Headers:  navigationHeaders("none"),
			Callback: a.Parsers.profileCallback(a.ExtractRecord),
		})
	}

	next, err := a.NextPage(resp)
	if err != nil {
		return res, err
	}
	if next != nil {
		res.Requests = append(res.Requests, next)
	}
	return res, nil
}

func (a *UKE) searchRequest(page int) *medreg.Request {
	return &medreg.Request{
		URL:        fmt.Sprintf(ukeSearchFormat, a.baseURL(), page, a.pageSize()),
		Headers:    navigationHeaders("none"),
		Priority:   1,
		DontFilter: true,
		Callback:   a.parseSearch,
		Page:       page,
	}
}

func (a *UKE) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return UKEBaseURL
}

func (a *UKE) pageSize() int {
	if a.PageSize > 0 {
		return a.PageSize
	}
	return UKEPageSize
}

func (a *UKE) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// pageOf returns the page number carried by a search request, defaulting
// to the first page.
func pageOf(req *medreg.Request) int {
	if req == nil || req.Page <= 0 {
		return 1
	}
	return req.Page
}
