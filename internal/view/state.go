// Package view holds the dashboard view state and the pure
// filter-sort-paginate pipeline that derives the visible table slice
// from it.
package view

import (
	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
)

// SortField selects the product attribute to order by.
type SortField string

const (
	SortByTitle SortField = "title"
	SortByPrice SortField = "price"
)

// SortDirection is the order of a sorted column.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Sort describes the active sort column and direction. A nil *Sort
// means insertion order.
type Sort struct {
	Field     SortField
	Direction SortDirection
}

// State is the session-lifetime aggregate the pipeline projects from:
// the cached catalog plus search, sort, pagination, and selection
// parameters. One State instance belongs to one controller; there are
// no package-level singletons.
type State struct {
	Catalog    []catalog.Product
	SearchTerm string
	Sort       *Sort
	Page       int
	PageSize   int
	Selected   *int64
}

// NewState returns a State with an empty catalog positioned at the
// first page.
func NewState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &State{Page: 1, PageSize: pageSize}
}

// ReplaceCatalog swaps the full product set, as done after the initial
// fetch. Search, sort, and page size survive; the page is re-clamped
// on the next projection.
func (s *State) ReplaceCatalog(products []catalog.Product) {
	s.Catalog = products
	s.Page = 1
}

// SetSearch changes the title filter and resets pagination to the
// first page.
func (s *State) SetSearch(term string) {
	s.SearchTerm = term
	s.Page = 1
}

// SetPageSize changes the number of items per page and resets to the
// first page. Non-positive sizes are ignored.
func (s *State) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	s.PageSize = size
	s.Page = 1
}

// SetPage moves to the requested page. The value is clamped against
// the filtered set during projection; here only the lower bound is
// enforced.
func (s *State) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.Page = page
}

// ToggleSort applies sorting by the given field: a new field starts
// ascending, the same field flips direction. The current page is
// deliberately preserved; the filtered length does not change, so no
// clamping is needed.
func (s *State) ToggleSort(field SortField) {
	if s.Sort != nil && s.Sort.Field == field {
		if s.Sort.Direction == Ascending {
			s.Sort.Direction = Descending
		} else {
			s.Sort.Direction = Ascending
		}
		return
	}
	s.Sort = &Sort{Field: field, Direction: Ascending}
}

// ClearSort returns the catalog to insertion order.
func (s *State) ClearSort() {
	s.Sort = nil
}

// Select marks a product as opened in a detail view. It returns a copy
// of the record, or a *catalog.NotFoundError when the identifier is
// not in the local catalog; the selection is unchanged in that case.
func (s *State) Select(id int64) (catalog.Product, error) {
	for _, p := range s.Catalog {
		if p.ID == id {
			s.Selected = &id
			return p, nil
		}
	}
	return catalog.Product{}, &catalog.NotFoundError{ID: id}
}

// ClearSelection closes the detail view.
func (s *State) ClearSelection() {
	s.Selected = nil
}

// IndexByID returns the catalog position of the product with the given
// identifier, or -1. Operations locate records by identifier, never by
// table position.
func (s *State) IndexByID(id int64) int {
	for i := range s.Catalog {
		if s.Catalog[i].ID == id {
			return i
		}
	}
	return -1
}

// Prepend inserts a freshly created product at the head of the catalog
// and resets the view to an unsorted first page, so the new record is
// visible immediately.
func (s *State) Prepend(p catalog.Product) {
	s.Catalog = append([]catalog.Product{p}, s.Catalog...)
	s.Sort = nil
	s.Page = 1
}
