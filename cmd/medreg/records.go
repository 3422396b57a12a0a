package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/medreg"
)

// Run executes the records command. Records are printed as JSON lines.
func (c *RecordsCmd) Run(deps *Dependencies) error {
	if err := c.run(deps); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", medreg.ErrorMessage(err))
		return err
	}
	return nil
}

func (c *RecordsCmd) run(deps *Dependencies) error {
	if c.Limit < 0 || c.Offset < 0 {
		return medreg.Errorf(medreg.EINVALID, "--limit and --offset must not be negative")
	}
	if c.Count {
		n, err := deps.Records.CountRecords(deps.Ctx, c.Spider)
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, n)
		return nil
	}

	recs, err := deps.Records.FindRecords(deps.Ctx, c.filter())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(deps.Stdout)
	for _, rec := range recs {
		if err := enc.Encode(rec.Data); err != nil {
			return err
		}
	}
	return nil
}

func (c *RecordsCmd) filter() medreg.RecordFilter {
	f := medreg.RecordFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Spider != "" {
		f.Source = &c.Spider
	}
	if c.URL != "" {
		f.URL = &c.URL
	}
	return f
}
