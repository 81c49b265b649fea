package model

import "math"

// Ordering is a single requested sort key. Field is validated against a
// per-resource whitelist by the repository; unknown fields are ignored.
type Ordering struct {
	Field string
	Desc  bool
}

// ListOptions carries page-number pagination, ordering and search shared by
// all list endpoints.
type ListOptions struct {
	Page     int
	PageSize int
	Ordering []Ordering
	Search   string
}

// Limit returns the page size, defaulting to 10.
func (o ListOptions) Limit() int {
	if o.PageSize <= 0 {
		return 10
	}
	return o.PageSize
}

// Offset returns the row offset of the requested page (pages are 1-based).
func (o ListOptions) Offset() int {
	if o.Page <= 1 {
		return 0
	}
	return (o.Page - 1) * o.Limit()
}

// Page is the paginated list envelope returned by every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether more rows exist after the current page.
func (o ListOptions) HasNext(total int) bool {
	return o.Offset()+o.Limit() < total
}

// Validate rejects pages whose row offset would not fit in an int.
func (o ListOptions) Validate() error {
	if o.Page > 1 && o.Page-1 > (math.MaxInt-o.Limit())/o.Limit() {
		return ErrInvalidPage
	}
	return nil
}

// CheckPage rejects pages past the end. Page 1 is always valid, even when empty.
func (o ListOptions) CheckPage(total int) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.Page > 1 && o.Offset() >= total {
		return ErrInvalidPage
	}
	return nil
}
