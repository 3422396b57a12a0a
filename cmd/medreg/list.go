package main

import (
	"fmt"

	"github.com/fwojciec/medreg"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	for _, name := range deps.Adapters.Names() {
		a, err := deps.Adapters.Get(name)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", medreg.ErrorMessage(err))
			return err
		}
		s := a.Settings().WithDefaults()
		fmt.Fprintf(deps.Stdout, "%s  concurrency=%d per_domain=%d delay=%s retries=%d\n",
			name, s.Concurrency, s.ConcurrencyPerDomain, s.Delay, s.RetryTimes)
	}
	return nil
}
