package view

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
)

func product(id int64, title string, price string) catalog.Product {
	return catalog.Product{
		ID:    id,
		Title: title,
		Price: decimal.RequireFromString(price),
	}
}

func titles(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{
		product(1, "Red Shirt", "10"),
		product(2, "Blue Pants", "20"),
		product(3, "Striped Shirt", "30"),
	}

	s.SetSearch("shirt")
	v := Project(s)

	assert.Equal(t, []string{"Red Shirt", "Striped Shirt"}, titles(v.Items))
}

func TestFilter_EmptyTermKeepsOrder(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{
		product(3, "c", "1"),
		product(1, "a", "2"),
		product(2, "b", "3"),
	}

	v := Project(s)

	assert.Equal(t, []string{"c", "a", "b"}, titles(v.Items))
	assert.Equal(t, 3, v.TotalItems)
}

func TestFilter_TermIsTrimmed(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{product(1, "Red Shirt", "10")}

	s.SetSearch("  SHIRT  ")
	v := Project(s)

	assert.Len(t, v.Items, 1)
}

func TestSort_ByTitleCaseInsensitive(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{
		product(1, "banana", "1"),
		product(2, "Apple", "1"),
		product(3, "cherry", "1"),
	}

	s.ToggleSort(SortByTitle)
	v := Project(s)

	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(v.Items))
}

func TestSort_ByPriceStable(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{
		product(1, "first", "5"),
		product(2, "second", "5"),
		product(3, "cheap", "1"),
		product(4, "third", "5"),
	}

	s.ToggleSort(SortByPrice)
	v := Project(s)

	// Equal prices keep their original relative order.
	assert.Equal(t, []string{"cheap", "first", "second", "third"}, titles(v.Items))
}

func TestSort_MissingPriceTreatedAsZero(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{
		product(1, "priced", "10"),
		{ID: 2, Title: "unpriced"},
	}

	s.ToggleSort(SortByPrice)
	v := Project(s)

	assert.Equal(t, []string{"unpriced", "priced"}, titles(v.Items))
}

func TestSort_ToggleRoundTrip(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{
		product(1, "b", "2"),
		product(2, "a", "1"),
		product(3, "c", "3"),
	}

	s.ToggleSort(SortByTitle)
	ascending := titles(Project(s).Items)

	s.ToggleSort(SortByTitle)
	descending := titles(Project(s).Items)
	assert.Equal(t, []string{"c", "b", "a"}, descending)

	s.ToggleSort(SortByTitle)
	assert.Equal(t, ascending, titles(Project(s).Items))
}

func TestSort_NewFieldResetsDirection(t *testing.T) {
	s := NewState(10)
	s.ToggleSort(SortByTitle)
	s.ToggleSort(SortByTitle)
	require.Equal(t, Descending, s.Sort.Direction)

	s.ToggleSort(SortByPrice)

	assert.Equal(t, SortByPrice, s.Sort.Field)
	assert.Equal(t, Ascending, s.Sort.Direction)
}

func TestPaginate_TwentyFiveItemsPageSizeTen(t *testing.T) {
	s := NewState(10)
	for i := 1; i <= 25; i++ {
		s.Catalog = append(s.Catalog, product(int64(i), fmt.Sprintf("item %02d", i), "1"))
	}

	v := Project(s)
	require.Equal(t, 3, v.TotalPages)
	assert.Len(t, v.Items, 10)
	assert.Equal(t, int64(1), v.Items[0].ID)
	assert.Equal(t, 1, v.RangeStart)
	assert.Equal(t, 10, v.RangeEnd)

	s.SetPage(3)
	v = Project(s)
	assert.Len(t, v.Items, 5)
	assert.Equal(t, int64(21), v.Items[0].ID)
	assert.Equal(t, 21, v.RangeStart)
	assert.Equal(t, 25, v.RangeEnd)
}

func TestPaginate_PageClampedToFilteredSet(t *testing.T) {
	s := NewState(10)
	for i := 1; i <= 25; i++ {
		s.Catalog = append(s.Catalog, product(int64(i), fmt.Sprintf("item %02d", i), "1"))
	}
	s.SetPage(99)

	v := Project(s)

	assert.Equal(t, 3, v.Page)
	assert.Equal(t, 3, s.Page)
}

func TestPaginate_EmptyResult(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{product(1, "Red Shirt", "10")}
	s.SetSearch("no such thing")
	s.SetPage(5)

	v := Project(s)

	assert.True(t, v.Empty)
	assert.Empty(t, v.Items)
	assert.Zero(t, v.TotalPages)
	assert.Equal(t, 1, v.Page)
	assert.Zero(t, v.RangeStart)
	assert.Zero(t, v.RangeEnd)
}

func TestPaginate_SliceNeverExceedsPageSize(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 25, 100} {
		for _, size := range []int{1, 3, 10} {
			s := NewState(size)
			for i := 1; i <= total; i++ {
				s.Catalog = append(s.Catalog, product(int64(i), fmt.Sprintf("p%d", i), "1"))
			}
			for page := 1; page <= 12; page++ {
				s.SetPage(page)
				v := Project(s)
				assert.LessOrEqual(t, len(v.Items), size)
				wantPages := (total + size - 1) / size
				assert.Equal(t, wantPages, v.TotalPages)
				assert.GreaterOrEqual(t, v.Page, 1)
				assert.LessOrEqual(t, v.Page, max(wantPages, 1))
			}
		}
	}
}

func TestProject_DoesNotMutateCatalogOrder(t *testing.T) {
	s := NewState(10)
	s.Catalog = []catalog.Product{
		product(2, "b", "2"),
		product(1, "a", "1"),
	}

	s.ToggleSort(SortByTitle)
	Project(s)

	// Sorting operates on a projection copy, never the stored catalog.
	assert.Equal(t, int64(2), s.Catalog[0].ID)
}
