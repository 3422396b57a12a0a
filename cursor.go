package medreg

// PageCursor is page-number pagination state for search APIs that report
// their size in different ways. It is recomputed from every response and
// never persisted.
type PageCursor struct {
	// Page is the 1-based number of the page just fetched.
	Page int
	// PageSize is the requested batch size.
	PageSize int
	// TotalPages is explicit page-count metadata, 0 if absent.
	TotalPages int
	// NumFound is the reported total result count, 0 if absent.
	NumFound int
	// Returned is the number of results on the page just fetched.
	Returned int
}

// Next returns the number of the following page, or false when pagination
// ends. Heuristics are applied in order and the first applicable one decides:
// explicit total pages, total estimated from NumFound, and finally "a full
// batch means there may be more". A page with zero results always ends
// pagination.
func (c PageCursor) Next() (int, bool) {
	if c.Returned <= 0 || c.Page <= 0 {
		return 0, false
	}
	switch {
	case c.TotalPages > 0:
		return c.Page + 1, c.Page < c.TotalPages
	case c.NumFound > 0 && c.PageSize > 0:
		total := (c.NumFound + c.PageSize - 1) / c.PageSize
		return c.Page + 1, c.Page < total
	case c.PageSize > 0 && c.Returned >= c.PageSize:
		return c.Page + 1, true
	}
	return 0, false
}
