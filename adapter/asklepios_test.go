package adapter_test

import (
	"context"
	"testing"

	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/adapter"
	"github.com/fwojciec/medreg/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const asklepiosIndex = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>https://www.asklepios.com/sitemap/konzern@PROFILE-1.xml</loc></sitemap>
<sitemap><loc>https://www.asklepios.com/sitemap/konzern@NEWS-1.xml</loc></sitemap>
</sitemapindex>`

const asklepiosProfiles = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>https://www.asklepios.com/hamburg/altona/profil/anna-schmidt</loc></url>
<url><loc>https://www.asklepios.com/hamburg/altona/kardiologie</loc></url>
</urlset>`

const asklepiosProfile = `<!DOCTYPE html>
<html>
<head><meta property="og:image" content="https://www.asklepios.com/img/anna.jpg"></head>
<body>
<h1> Dr. med. Anna Schmidt </h1>
<div><span>Position</span><span>Chefärztin</span></div>
<div><span>Facharzt</span><span>Kardiologie</span></div>
<p><svg aria-label="Telefonnummer"></svg> +49 40 1818 </p>
<div aria-labelledby="accordion-Höhepunkte der beruflichen Laufbahn-0-heading"><p>Seit 2015 Chefärztin</p><p> </p><p>Habilitation 2010</p></div>
<article data-test-id="facility-teaser">
<h3>Klinik</h3>
<p class="text-[14px] truncate text-gray-700">Asklepios Klinik Altona</p>
<div><svg aria-label="Adresse"></svg><p>Paul-Ehrlich-Str. 1</p><p>22763 Hamburg</p></div>
<div><svg aria-label="Telefonnummer"></svg><p>(040) 1818 81-0</p></div>
</article>
</body>
</html>`

func TestAsklepios_Discovery(t *testing.T) {
	t.Parallel()

	a := adapter.NewAsklepios(parsers())
	seeds := a.Discover()
	require.Len(t, seeds, 1)
	assert.Equal(t, "https://www.asklepios.com/sitemap-index.xml", seeds[0].URL)

	res, err := seeds[0].Callback(context.Background(), &medreg.Response{URL: seeds[0].URL, Body: []byte(asklepiosIndex)})
	require.NoError(t, err)
	require.Len(t, res.Requests, 1)
	assert.Equal(t, "https://www.asklepios.com/sitemap/konzern@PROFILE-1.xml", res.Requests[0].URL)

	sitemap := res.Requests[0]
	res, err = sitemap.Callback(context.Background(), &medreg.Response{URL: sitemap.URL, Body: []byte(asklepiosProfiles)})
	require.NoError(t, err)
	require.Len(t, res.Requests, 1)
	assert.Equal(t, "https://www.asklepios.com/hamburg/altona/profil/anna-schmidt", res.Requests[0].URL)
	assert.Equal(t, "no-cache", res.Requests[0].Headers["Pragma"])
	assert.Equal(t, "same-origin", res.Requests[0].Headers["Sec-Fetch-Site"])

	profile := res.Requests[0]
	res, err = profile.Callback(context.Background(), &medreg.Response{URL: profile.URL, Body: []byte(asklepiosProfile)})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Dr. med. Anna Schmidt", res.Records[0]["name"])
}

func TestAsklepios_DiscoveryRejectsMalformedSitemap(t *testing.T) {
	t.Parallel()

	seed := adapter.NewAsklepios(parsers()).Discover()[0]

	_, err := seed.Callback(context.Background(), &medreg.Response{Body: []byte(`<sitemapindex><sitemap><loc>x</loc`)})

	require.Error(t, err)
	assert.Equal(t, medreg.EINVALID, medreg.ErrorCode(err))
}

func TestAsklepios_ExtractRecord(t *testing.T) {
	t.Parallel()

	doc, err := htmlquery.Parse([]byte(asklepiosProfile))
	require.NoError(t, err)

	rec := adapter.NewAsklepios(parsers()).ExtractRecord(doc, "https://www.asklepios.com/hamburg/altona/profil/anna-schmidt")

	assert.Equal(t, medreg.Record{
		"url":                    "https://www.asklepios.com/hamburg/altona/profil/anna-schmidt",
		"name":                   "Dr. med. Anna Schmidt",
		"position":               "Chefärztin",
		"area_of_responsibility": "",
		"specialty":              "Kardiologie",
		"einrichtung":            "",
		"phone":                  "+49 40 1818",
		"fax":                    "",
		"career_highlights":      "Seit 2015 Chefärztin, Habilitation 2010",
		"clinic_1":               "clinic_name: Asklepios Klinik Altona\nclinic_type: Klinik\nclinic_address: Paul-Ehrlich-Str. 1, 22763 Hamburg\nclinic_phone: (040) 1818 81-0",
		"clinic_2":               nil,
		"img_url":                "https://www.asklepios.com/img/anna.jpg",
		"llm_content":            "",
		"field_membership":       "",
	}, rec)
}

func TestAsklepios_NextPage(t *testing.T) {
	t.Parallel()

	next, err := adapter.NewAsklepios(parsers()).NextPage(&medreg.Response{Body: []byte(`<html></html>`)})

	require.NoError(t, err)
	assert.Nil(t, next)
}
