package mock

import "github.com/fwojciec/medreg"

var (
	_ medreg.Adapter         = (*Adapter)(nil)
	_ medreg.AdapterRegistry = (*AdapterRegistry)(nil)
	_ medreg.Enricher        = (*Enricher)(nil)
)

// Adapter is a mock implementation of medreg.Adapter.
type Adapter struct {
	NameFn          func() string
	SettingsFn      func() medreg.Settings
	DiscoverFn      func() []*medreg.Request
	ExtractRecordFn func(doc medreg.Document, pageURL string) medreg.Record
	NextPageFn      func(resp *medreg.Response) (*medreg.Request, error)
}

func (a *Adapter) Name() string {
	return a.NameFn()
}

func (a *Adapter) Settings() medreg.Settings {
	if a.SettingsFn == nil {
		return medreg.Settings{}
	}
	return a.SettingsFn()
}

func (a *Adapter) Discover() []*medreg.Request {
	return a.DiscoverFn()
}

func (a *Adapter) ExtractRecord(doc medreg.Document, pageURL string) medreg.Record {
	return a.ExtractRecordFn(doc, pageURL)
}

func (a *Adapter) NextPage(resp *medreg.Response) (*medreg.Request, error) {
	return a.NextPageFn(resp)
}

// AdapterRegistry is a mock implementation of medreg.AdapterRegistry.
type AdapterRegistry struct {
	GetFn   func(name string) (medreg.Adapter, error)
	NamesFn func() []string
}

func (r *AdapterRegistry) Get(name string) (medreg.Adapter, error) {
	return r.GetFn(name)
}

func (r *AdapterRegistry) Names() []string {
	return r.NamesFn()
}

// Enricher is a mock implementation of medreg.Enricher.
type Enricher struct {
	EnrichFn func(resp *medreg.Response, rec medreg.Record) error
}

func (e *Enricher) Enrich(resp *medreg.Response, rec medreg.Record) error {
	return e.EnrichFn(resp, rec)
}
