package adapter

import (
	"log/slog"

	"github.com/fwojciec/medreg"
)

// Compile-time interface verification.
var _ medreg.AdapterRegistry = (*Registry)(nil)

// Registry holds adapters by name in registration order.
type Registry struct {
	byName map[string]medreg.Adapter
	names  []string
}

// NewRegistry creates a registry of the given adapters. Later adapters
// replace earlier ones with the same name.
func NewRegistry(adapters ...medreg.Adapter) *Registry {
	r := &Registry{byName: make(map[string]medreg.Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// locatorTable is implemented by adapters that extract with locators.
type locatorTable interface {
	Fields() []medreg.Field
}

// NewDefaultRegistry registers every built-in site adapter and checks that
// the parser can evaluate all of their locators.
func NewDefaultRegistry(logger *slog.Logger, p Parsers) (*Registry, error) {
	uke := NewUKE(p)
	uke.Logger = logger
	r := NewRegistry(
		uke,
		NewApothekerkammer(p),
		NewAsklepios(p),
		NewKVHH(p),
	)
	if err := r.Validate(p.HTML); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds an adapter.
func (r *Registry) Register(a medreg.Adapter) {
	if _, ok := r.byName[a.Name()]; !ok {
		r.names = append(r.names, a.Name())
	}
	r.byName[a.Name()] = a
}

// Validate checks the locators of every registered adapter that declares
// them. It returns EINTERNAL naming the first adapter with a bad locator.
func (r *Registry) Validate(parser medreg.DocumentParser) error {
	if parser == nil {
		return medreg.Errorf(medreg.EINTERNAL, "no HTML parser configured")
	}
	for _, name := range r.names {
		t, ok := r.byName[name].(locatorTable)
		if !ok {
			continue
		}
		if err := parser.Validate(t.Fields()); err != nil {
			return medreg.Errorf(medreg.EINTERNAL, "%s: %v", name, err)
		}
	}
	return nil
}

// Get implements medreg.AdapterRegistry.
func (r *Registry) Get(name string) (medreg.Adapter, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, medreg.Errorf(medreg.ENOTFOUND, "unknown spider %q", name)
	}
	return a, nil
}

// Names implements medreg.AdapterRegistry.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
