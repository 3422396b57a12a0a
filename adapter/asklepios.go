package adapter

import (
	"fmt"
	"strings"

	"github.com/fwojciec/medreg"
)

// AsklepiosBaseURL hosts the Asklepios sitemap index.
const AsklepiosBaseURL = "https://www.asklepios.com"

// Sitemap filters.
const (
	asklepiosProfileSitemap = "/konzern@PROFILE-"
	asklepiosProfilePage    = "/profil/"
)

// Compile-time interface verification.
var _ medreg.Adapter = (*Asklepios)(nil)

// Asklepios crawls physician profiles of the Asklepios clinics. Discovery
// walks the sitemap index to the profile sitemaps and from there to the
// profile pages.
type Asklepios struct {
	BaseURL string
	Parsers Parsers
}

// NewAsklepios creates the adapter with production defaults.
func NewAsklepios(p Parsers) *Asklepios {
	return &Asklepios{BaseURL: AsklepiosBaseURL, Parsers: p}
}

// Name implements medreg.Adapter.
func (a *Asklepios) Name() string { return "asklepios" }

// Settings implements medreg.Adapter.
func (a *Asklepios) Settings() medreg.Settings {
	return medreg.Settings{
		Concurrency:          128,
		ConcurrencyPerDomain: 96,
		RetryTimes:           2,
		UserAgent:            UserAgent,
	}
}

// Discover implements medreg.Adapter.
func (a *Asklepios) Discover() []*medreg.Request {
	base := a.BaseURL
	if base == "" {
		base = AsklepiosBaseURL
	}
	profile := a.Parsers.profileCallback(a.ExtractRecord)
	toProfile := func(loc string) *medreg.Request {
		headers := navigationHeaders("same-origin")
		headers["Cache-Control"] = "no-cache"
		headers["Pragma"] = "no-cache"
		return &medreg.Request{URL: loc, Headers: headers, Callback: profile}
	}
	toSitemap := func(loc string) *medreg.Request {
		return &medreg.Request{
			URL:      loc,
			Priority: 1,
			Callback: a.Parsers.sitemapCallback(
				func(sm *medreg.Sitemap) []string { return sm.Containing(asklepiosProfilePage) },
				toProfile,
			),
		}
	}
	return []*medreg.Request{{
		URL:      strings.TrimRight(base, "/") + "/sitemap-index.xml",
		Priority: 2,
		Callback: a.Parsers.sitemapCallback(
			func(sm *medreg.Sitemap) []string { return sm.Containing(asklepiosProfileSitemap) },
			toSitemap,
		),
	}}
}

var asklepiosFields = []medreg.Field{
	{Name: "name", Locator: medreg.Trimmed(`//h1/text()`)},
	{Name: "position", Locator: medreg.Trimmed(`//span[text()="Position"]/following-sibling::span/text()`)},
	{Name: "area_of_responsibility", Locator: medreg.Trimmed(`//span[text()="Zuständigkeitsbereich"]/following-sibling::span/text()`)},
	{Name: "specialty", Locator: medreg.Trimmed(`//span[text()="Facharzt"]/following-sibling::span/text()`)},
	{Name: "einrichtung", Locator: medreg.Trimmed(`//span[text()="Einrichtung"]/following-sibling::span/text()`)},
	{Name: "phone", Locator: medreg.Trimmed(`//*[local-name()="svg"][@aria-label="Telefonnummer"]/following-sibling::text()`)},
	{Name: "fax", Locator: medreg.Trimmed(`//*[local-name()="svg"][@aria-label="Faxnummer"]/following-sibling::*/text()`)},
	{Name: "career_highlights", Locator: medreg.Joined(`//div[@aria-labelledby="accordion-Höhepunkte der beruflichen Laufbahn-0-heading"]//p/text()`)},
	{Name: "img_url", Locator: medreg.Trimmed(`//meta[@property="og:image"]/@content`)},
}

const asklepiosClinics = `//article[@data-test-id="facility-teaser"]`

var asklepiosClinicFields = []medreg.Field{
	{Name: "clinic_name", Locator: medreg.Trimmed(`.//p[starts-with(@class, "text-[14px] truncate")]/text()`)},
	{Name: "clinic_type", Locator: medreg.Trimmed(`.//h3/text()`)},
	{Name: "clinic_address", Locator: medreg.Joined(`.//*[local-name()="svg"][@aria-label="Adresse"]/following-sibling::p/text()`)},
	{Name: "clinic_phone", Locator: medreg.Trimmed(`.//*[local-name()="svg"][@aria-label="Telefonnummer"]/following-sibling::p/text()`)},
}

// Fields returns the profile and facility teaser locators.
func (a *Asklepios) Fields() []medreg.Field {
	fields := append([]medreg.Field{{Name: "clinics", Locator: medreg.Trimmed(asklepiosClinics)}}, asklepiosFields...)
	return append(fields, asklepiosClinicFields...)
}

// ExtractRecord implements medreg.Adapter. The first two facility teasers
// become clinic_1 and clinic_2; missing ones are nil.
func (a *Asklepios) ExtractRecord(doc medreg.Document, pageURL string) medreg.Record {
	rec := medreg.ExtractFields(doc, asklepiosFields)
	rec[medreg.FieldURL] = pageURL

	var clinics []string
	for _, teaser := range doc.Select(asklepiosClinics) {
		c := medreg.ExtractFields(teaser, asklepiosClinicFields)
		clinics = append(clinics, fmt.Sprintf("clinic_name: %s\nclinic_type: %s\nclinic_address: %s\nclinic_phone: %s",
			c.String("clinic_name"), c.String("clinic_type"), c.String("clinic_address"), c.String("clinic_phone")))
	}
	rec["clinic_1"] = nil
	rec["clinic_2"] = nil
	for i, c := range clinics {
		if i > 1 {
			break
		}
		rec[fmt.Sprintf("clinic_%d", i+1)] = c
	}

	rec["llm_content"] = ""
	rec["field_membership"] = ""
	return rec
}

// NextPage implements medreg.Adapter. Sitemap discovery never paginates.
func (a *Asklepios) NextPage(*medreg.Response) (*medreg.Request, error) {
	return nil, nil
}
