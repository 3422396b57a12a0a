package adapter

import (
	"strings"

	"github.com/fwojciec/medreg"
)

// KVHH defaults.
const (
	KVHHBaseURL       = "https://www.kvhh.net"
	kvhhProfilePrefix = "/de/medicalregister/net-kvhh-physician-"
)

// Compile-time interface verification.
var _ medreg.Adapter = (*KVHH)(nil)

// KVHH crawls the physician register of the Kassenärztliche Vereinigung
// Hamburg. Profiles are listed in a flat sitemap.
type KVHH struct {
	BaseURL string
	Parsers Parsers
}

// NewKVHH creates the adapter with production defaults.
func NewKVHH(p Parsers) *KVHH {
	return &KVHH{BaseURL: KVHHBaseURL, Parsers: p}
}

// Name implements medreg.Adapter.
func (a *KVHH) Name() string { return "kvhh" }

// Settings implements medreg.Adapter.
func (a *KVHH) Settings() medreg.Settings {
	return medreg.Settings{
		Concurrency:          64,
		ConcurrencyPerDomain: 32,
		RetryTimes:           2,
		UserAgent:            UserAgent,
	}
}

// Discover implements medreg.Adapter.
func (a *KVHH) Discover() []*medreg.Request {
	base := strings.TrimRight(a.baseURL(), "/")
	prefix := base + kvhhProfilePrefix
	profile := a.Parsers.profileCallback(a.ExtractRecord)
	return []*medreg.Request{{
		URL:      base + "/de/sitemap.xml",
		Headers:  map[string]string{"Accept": "application/xml, text/xml, */*"},
		Priority: 1,
		Callback: a.Parsers.sitemapCallback(
			func(sm *medreg.Sitemap) []string { return sm.WithPrefix(prefix) },
			func(loc string) *medreg.Request {
				return &medreg.Request{URL: loc, DontFilter: true, Callback: profile}
			},
		),
	}}
}

func (a *KVHH) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return KVHHBaseURL
}

var (
	kvhhName      = medreg.Collapsed(`//h1`)
	kvhhPhone     = medreg.Trimmed(`//a[starts-with(@href, "tel:")]/text()`)
	kvhhEmail     = medreg.Trimmed(`//a[starts-with(@href, "mailto:")]/@href`)
	kvhhSpecialty = medreg.Trimmed(dtValue("Fachgebiet"))
	kvhhLanguages = medreg.Lines(dtValue("Fremdsprachen"))
	kvhhServices  = medreg.Lines(dtValue("Leistungen"))
)

// Fields returns the profile locators.
func (a *KVHH) Fields() []medreg.Field {
	return []medreg.Field{
		{Name: "name", Locator: kvhhName},
		{Name: "phone", Locator: kvhhPhone},
		{Name: "email", Locator: kvhhEmail},
		{Name: "specialization", Locator: kvhhSpecialty},
		{Name: "languages", Locator: kvhhLanguages},
		{Name: "main_areas_of_activity", Locator: kvhhServices},
	}
}

// ExtractRecord implements medreg.Adapter. The specialty populates all
// role-like fields; values the page lacks are nil.
func (a *KVHH) ExtractRecord(doc medreg.Document, pageURL string) medreg.Record {
	name := ParseDoctorName(doc.Extract(kvhhName))
	specialty := nullIfEmpty(doc.Extract(kvhhSpecialty))

	return medreg.Record{
		medreg.FieldURL:          pageURL,
		"title":                  nullIfEmpty(name.Title),
		"first_name":             nullIfEmpty(name.FirstName),
		"last_name":              nullIfEmpty(name.LastName),
		"name":                   name.String(),
		"position":               specialty,
		"area_of_work":           specialty,
		"department":             specialty,
		"phone":                  doc.Extract(kvhhPhone),
		"email":                  trimPrefix(doc.Extract(kvhhEmail), "mailto:"),
		"languages":              nullIfEmpty(doc.Extract(kvhhLanguages)),
		"specialization":         specialty,
		"main_areas_of_activity": nullIfEmpty(doc.Extract(kvhhServices)),
		"llm_content":            "",
		"field_membership":       "",
	}
}

// NextPage implements medreg.Adapter. Sitemap discovery never paginates.
func (a *KVHH) NextPage(*medreg.Response) (*medreg.Request, error) {
	return nil, nil
}
