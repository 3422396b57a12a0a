package htmlquery_test

import (
	"testing"

	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileHTML = `<!DOCTYPE html>
<html>
<head><meta property="og:image" content="https://example.com/img.jpg"></head>
<body>
<div class="name">
   Prof. Dr. med.
   Anna    Schmidt-Weber
</div>
<div class="title">  Oberärztin </div>
<ul class="description">
  <li> A </li>
  <li>   </li>
  <li> B </li>
</ul>
<dl>
  <dt>Fremdsprachen</dt>
  <dd>Englisch<br>Französisch<br/> </dd>
</dl>
<a href="mailto:anna@example.com">Mail</a>
</body>
</html>`

func parse(t *testing.T, body string) *htmlquery.Document {
	t.Helper()
	doc, err := htmlquery.Parse([]byte(body))
	require.NoError(t, err)
	return doc
}

func TestDocument_Extract(t *testing.T) {
	t.Parallel()

	doc := parse(t, profileHTML)

	t.Run("trims the first match", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Oberärztin", doc.Extract(medreg.Trimmed(`//div[@class="title"]/text()`)))
	})

	t.Run("collapses whitespace for names", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Prof. Dr. med. Anna Schmidt-Weber",
			doc.Extract(medreg.Collapsed(`//div[@class="name"]/text()`)))
	})

	t.Run("joins list values and drops empty ones", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "A, B", doc.Extract(medreg.Joined(`//ul[@class="description"]/li/text()`)))
	})

	t.Run("returns empty string for missing field", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", doc.Extract(medreg.Trimmed(`//div[@class="fax"]/text()`)))
		assert.Equal(t, "", doc.Extract(medreg.Collapsed(`//div[@class="fax"]/text()`)))
		assert.Equal(t, "", doc.Extract(medreg.Joined(`//div[@class="fax"]/text()`)))
		assert.Equal(t, "", doc.Extract(medreg.Lines(`//dd[@class="none"]`)))
	})

	t.Run("extracts attributes", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://example.com/img.jpg",
			doc.Extract(medreg.Trimmed(`//meta[@property="og:image"]/@content`)))
		assert.Equal(t, "mailto:anna@example.com",
			doc.Extract(medreg.Trimmed(`//a[starts-with(@href,'mailto:')]/@href`)))
	})

	t.Run("extracts element string value", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Mail", doc.Extract(medreg.Trimmed(`//a`)))
	})

	t.Run("splits element on br", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Englisch, Französisch",
			doc.Extract(medreg.Lines(`//dt[contains(normalize-space(.), "Fremdsprachen")]/following-sibling::dd[1]`)))
	})

	t.Run("invalid expression matches nothing", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", doc.Extract(medreg.Trimmed(`//div[`)))
	})
}

func TestDocument_Select(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<div class="list">
<div class="row"><h3><a href="/a">Alpha</a></h3></div>
<div class="row"><h3><a href="/b">Beta</a></h3></div>
</div>`)

	rows := doc.Select(`//div[@class="row"]`)
	require.Len(t, rows, 2)

	assert.Equal(t, "Alpha", rows[0].Extract(medreg.Trimmed(`.//h3/a/text()`)))
	assert.Equal(t, "/b", rows[1].Extract(medreg.Trimmed(`.//h3/a/@href`)))
}

func TestExtractFields(t *testing.T) {
	t.Parallel()

	doc := parse(t, profileHTML)
	rec := medreg.ExtractFields(doc, []medreg.Field{
		{Name: "title", Locator: medreg.Trimmed(`//div[@class="title"]/text()`)},
		{Name: "fax", Locator: medreg.Trimmed(`//div[@class="fax"]/text()`)},
	})

	assert.Equal(t, medreg.Record{"title": "Oberärztin", "fax": ""}, rec)
}

func TestParser_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid locators", func(t *testing.T) {
		t.Parallel()
		err := htmlquery.NewParser().Validate([]medreg.Field{
			{Name: "a", Locator: medreg.Trimmed(`//*[local-name()="svg"][@aria-label="Adresse"]/following-sibling::p/text()`)},
		})
		require.NoError(t, err)
	})

	t.Run("reports invalid locator", func(t *testing.T) {
		t.Parallel()
		err := htmlquery.NewParser().Validate([]medreg.Field{{Name: "broken", Locator: medreg.Trimmed(`//div[`)}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})
}
