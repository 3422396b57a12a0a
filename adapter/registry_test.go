package adapter_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/adapter"
	"github.com/fwojciec/medreg/htmlquery"
	"github.com/fwojciec/medreg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry(t *testing.T) {
	t.Parallel()

	r, err := adapter.NewDefaultRegistry(nil, parsers())

	require.NoError(t, err, "every built-in locator should compile")
	assert.Equal(t, []string{"uke", "apothekerkammer-hamburg", "asklepios", "kvhh"}, r.Names())
	for _, name := range r.Names() {
		a, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
	}
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	t.Run("hands each locator table to the parser", func(t *testing.T) {
		t.Parallel()

		var seen []string
		parser := &mock.DocumentParser{
			ValidateFn: func(fields []medreg.Field) error {
				for _, f := range fields {
					if f.Name == "name" {
						seen = append(seen, f.Locator.Path)
					}
				}
				return nil
			},
		}

		_, err := adapter.NewDefaultRegistry(nil, adapter.Parsers{HTML: parser})

		require.NoError(t, err)
		assert.Len(t, seen, 4)
	})

	t.Run("names the adapter with a bad locator", func(t *testing.T) {
		t.Parallel()

		parser := &mock.DocumentParser{
			ValidateFn: func([]medreg.Field) error { return errors.New("unexpected token") },
		}

		_, err := adapter.NewDefaultRegistry(nil, adapter.Parsers{HTML: parser})

		assert.Equal(t, medreg.EINTERNAL, medreg.ErrorCode(err))
		assert.Contains(t, err.Error(), "uke: unexpected token")
	})

	t.Run("requires a parser", func(t *testing.T) {
		t.Parallel()

		_, err := adapter.NewDefaultRegistry(nil, adapter.Parsers{})

		assert.Equal(t, medreg.EINTERNAL, medreg.ErrorCode(err))
	})

	t.Run("skips adapters without locators", func(t *testing.T) {
		t.Parallel()

		r := adapter.NewRegistry(&mock.Adapter{NameFn: func() string { return "plain" }})

		assert.NoError(t, r.Validate(htmlquery.NewParser()))
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		_, err := adapter.NewRegistry().Get("nope")

		require.Error(t, err)
		assert.Equal(t, medreg.ENOTFOUND, medreg.ErrorCode(err))
	})

	t.Run("later registration replaces earlier", func(t *testing.T) {
		t.Parallel()

		first := &mock.Adapter{NameFn: func() string { return "x" }}
		second := &mock.Adapter{NameFn: func() string { return "x" }}
		r := adapter.NewRegistry(first, second)

		got, err := r.Get("x")

		require.NoError(t, err)
		assert.Same(t, second, got)
		assert.Equal(t, []string{"x"}, r.Names())
	})
}

func TestRegistry_NamesIsACopy(t *testing.T) {
	t.Parallel()

	r, err := adapter.NewDefaultRegistry(nil, parsers())
	require.NoError(t, err)
	names := r.Names()
	names[0] = "changed"

	assert.Equal(t, "uke", r.Names()[0])
}
