// Package listing keeps the filter, sort and page selection of a product
// listing view and turns it into product queries.
package listing

import (
	"net/url"
	"slices"
	"strconv"
)

// PageSize is the number of products shown per listing page.
const PageSize = 12

// SortOption is a sort choice offered to shoppers.
type SortOption struct {
	Name  string
	Field string
	Order string
}

// SortOptions lists the sort choices in display order.
var SortOptions = []SortOption{
	{Name: "Price: low to high", Field: "price", Order: "asc"},
	{Name: "Price: high to low", Field: "price", Order: "desc"},
}

// State is an immutable listing selection. Every transition returns a new
// State; changing filters or sort starts again from page 1.
type State struct {
	brands     []string
	categories []string
	sort       *SortOption
	page       int
	admin      bool
}

// NewState returns an unfiltered, unsorted selection on page 1. Admin
// listings include deleted products.
func NewState(admin bool) State {
	return State{page: 1, admin: admin}
}

// Brands returns the selected brand ids in sorted order.
func (s State) Brands() []string { return slices.Clone(s.brands) }

// Categories returns the selected category ids in sorted order.
func (s State) Categories() []string { return slices.Clone(s.categories) }

// Page returns the 1-based page number.
func (s State) Page() int { return s.page }

// Admin reports whether deleted products are listed too.
func (s State) Admin() bool { return s.admin }

// Sort returns the selected sort option, or nil when none is selected.
func (s State) Sort() *SortOption {
	if s.sort == nil {
		return nil
	}
	opt := *s.sort
	return &opt
}

// ToggleBrand adds the brand to the filter, or removes it when present.
func (s State) ToggleBrand(id string) State {
	s.brands = toggle(s.brands, id)
	s.page = 1
	return s
}

// ToggleCategory adds the category to the filter, or removes it when present.
func (s State) ToggleCategory(id string) State {
	s.categories = toggle(s.categories, id)
	s.page = 1
	return s
}

// WithSort selects opt. A nil opt clears the sort.
func (s State) WithSort(opt *SortOption) State {
	if opt != nil {
		o := *opt
		opt = &o
	}
	s.sort = opt
	s.page = 1
	return s
}

// WithPage moves to page p, keeping filters and sort. Pages below 1 clamp to 1.
func (s State) WithPage(p int) State {
	s.page = max(p, 1)
	return s
}

// Query is the product listing request derived from a State.
type Query struct {
	Brands     []string
	Categories []string
	User       bool
	Sort       string
	Order      string
	Page       int
	Limit      int
}

// Query derives the request for the current selection. Shopper listings
// are restricted to products that are not deleted.
func (s State) Query() Query {
	q := Query{
		Brands:     s.Brands(),
		Categories: s.Categories(),
		User:       !s.admin,
		Page:       s.page,
		Limit:      PageSize,
	}
	if s.sort != nil {
		q.Sort = s.sort.Field
		q.Order = s.sort.Order
	}
	return q
}

// Values encodes q as query string parameters, repeating brand and category.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, b := range q.Brands {
		v.Add("brand", b)
	}
	for _, c := range q.Categories {
		v.Add("category", c)
	}
	if q.User {
		v.Set("user", "true")
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
		v.Set("order", q.Order)
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return v
}

// TotalPages is the number of pages needed to show total products.
func TotalPages(total int64) int {
	return int((total + PageSize - 1) / PageSize)
}

// ShowingRange returns the 1-based positions of the first and last product
// shown on page, as in "Showing 13 to 24 of 30 results". Both are zero when
// the page is empty.
func ShowingRange(page int, total int64) (from, to int64) {
	from = int64(page-1)*PageSize + 1
	if total < from {
		return 0, 0
	}
	return from, min(int64(page)*PageSize, total)
}

// toggle returns a sorted copy of ids with id added or removed.
func toggle(ids []string, id string) []string {
	out := slices.Clone(ids)
	if i := slices.Index(out, id); i >= 0 {
		return slices.Delete(out, i, i+1)
	}
	out = append(out, id)
	slices.Sort(out)
	return out
}
