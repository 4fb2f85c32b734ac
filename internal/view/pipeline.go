package view

import (
	"slices"
	"strings"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
)

// View is the derived projection handed to presentation surfaces. It
// is recomputed from State on every mutation and never cached beyond a
// render cycle.
type View struct {
	Items      []catalog.Product
	Page       int
	TotalPages int
	PageSize   int
	TotalItems int
	// RangeStart and RangeEnd are the 1-based positions of the first
	// and last visible item within the filtered set, both zero when
	// the filter matches nothing.
	RangeStart int
	RangeEnd   int
	// Empty reports a zero-length filtered result. It is a regular
	// view state, distinct from a load failure.
	Empty      bool
	SearchTerm string
	Sort       *Sort
}

// Project derives the visible slice in the fixed filter, sort,
// paginate order. The page is clamped into [1, max(totalPages, 1)] and
// the clamped value is written back to the state.
func Project(s *State) View {
	filtered := Collect(s)

	totalPages := 0
	if len(filtered) > 0 {
		totalPages = (len(filtered) + s.PageSize - 1) / s.PageSize
	}
	s.Page = clampPage(s.Page, totalPages)

	start := (s.Page - 1) * s.PageSize
	end := min(start+s.PageSize, len(filtered))
	if start > len(filtered) {
		start, end = len(filtered), len(filtered)
	}

	v := View{
		Items:      filtered[start:end],
		Page:       s.Page,
		TotalPages: totalPages,
		PageSize:   s.PageSize,
		TotalItems: len(filtered),
		Empty:      len(filtered) == 0,
		SearchTerm: s.SearchTerm,
		Sort:       s.Sort,
	}
	if end > start {
		v.RangeStart = start + 1
		v.RangeEnd = end
	}
	return v
}

// Collect returns the filtered and sorted product sequence across all
// pages, used both by Project and by the filtered-scope export.
func Collect(s *State) []catalog.Product {
	filtered := filterProducts(s.Catalog, s.SearchTerm)
	sortProducts(filtered, s.Sort)
	return filtered
}

// filterProducts keeps products whose title contains the trimmed term,
// case-insensitively. An empty term keeps everything, in order.
func filterProducts(products []catalog.Product, term string) []catalog.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]catalog.Product, 0, len(products))
	if term == "" {
		return append(out, products...)
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), term) {
			out = append(out, p)
		}
	}
	return out
}

// sortProducts orders the slice in place. The sort is stable so equal
// elements keep their filtered order; a descending direction reverses
// the comparator result, not the stable order.
func sortProducts(products []catalog.Product, s *Sort) {
	if s == nil {
		return
	}
	cmp := func(a, b catalog.Product) int {
		var c int
		switch s.Field {
		case SortByPrice:
			// The decimal zero value compares as 0, covering records
			// with a missing price.
			c = a.Price.Cmp(b.Price)
		default:
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
		if s.Direction == Descending {
			c = -c
		}
		return c
	}
	slices.SortStableFunc(products, cmp)
}

func clampPage(page, totalPages int) int {
	upper := max(totalPages, 1)
	if page < 1 {
		return 1
	}
	if page > upper {
		return upper
	}
	return page
}
