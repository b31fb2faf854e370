package domain

// PageParams holds offset-based pagination for list queries.
// Size 0 means "no limit, skip From items". When Size > 0 and From >= Size
// the page is empty by convention rather than an error.
type PageParams struct {
	From int
	Size int
}

// Empty reports whether the page can be answered without querying.
func (p PageParams) Empty() bool {
	return p.Size > 0 && p.From >= p.Size
}

// Limit returns the row limit, or -1 when the page is unbounded.
func (p PageParams) Limit() int {
	if p.Size == 0 {
		return -1
	}
	return p.Size
}

// Offset returns the row offset.
func (p PageParams) Offset() int {
	if p.From < 0 {
		return 0
	}
	return p.From
}
