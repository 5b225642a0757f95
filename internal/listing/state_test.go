package listing_test

import (
	"net/url"
	"testing"

	"bookheaven/internal/listing"

	"github.com/stretchr/testify/assert"
)

func TestNewStateQuery(t *testing.T) {
	q := listing.NewState(false).Query()

	assert.Equal(t, listing.Query{User: true, Page: 1, Limit: listing.PageSize}, q)
	assert.Equal(t, url.Values{
		"user":  {"true"},
		"page":  {"1"},
		"limit": {"12"},
	}, q.Values())
}

func TestAdminQueryIncludesDeleted(t *testing.T) {
	q := listing.NewState(true).Query()
	assert.False(t, q.User)
	assert.NotContains(t, q.Values(), "user")
}

func TestToggleResetsPage(t *testing.T) {
	s := listing.NewState(false).WithPage(3)
	assert.Equal(t, 3, s.Page())

	s = s.ToggleBrand("b2").ToggleBrand("b1")
	assert.Equal(t, 1, s.Page())
	assert.Equal(t, []string{"b1", "b2"}, s.Brands())

	s = s.WithPage(2).ToggleCategory("c1")
	assert.Equal(t, 1, s.Page())
	assert.Equal(t, []string{"c1"}, s.Categories())

	s = s.ToggleBrand("b1")
	assert.Equal(t, []string{"b2"}, s.Brands())
}

func TestTransitionsDoNotMutate(t *testing.T) {
	base := listing.NewState(false).ToggleBrand("b1")
	next := base.ToggleBrand("b2").WithSort(&listing.SortOptions[0]).WithPage(4)

	assert.Equal(t, []string{"b1"}, base.Brands())
	assert.Nil(t, base.Sort())
	assert.Equal(t, 1, base.Page())
	assert.Equal(t, []string{"b1", "b2"}, next.Brands())
	assert.Equal(t, 4, next.Page())

	brands := next.Brands()
	brands[0] = "changed"
	assert.Equal(t, []string{"b1", "b2"}, next.Brands())
}

func TestWithSort(t *testing.T) {
	s := listing.NewState(false).WithPage(5).WithSort(&listing.SortOptions[1])
	assert.Equal(t, 1, s.Page())

	q := s.Query()
	assert.Equal(t, "price", q.Sort)
	assert.Equal(t, "desc", q.Order)
	assert.Equal(t, "price", q.Values().Get("sort"))

	s = s.WithSort(nil)
	assert.Nil(t, s.Sort())
	assert.Empty(t, s.Query().Values().Get("sort"))
}

func TestWithPageKeepsFilters(t *testing.T) {
	s := listing.NewState(false).ToggleCategory("c1").WithSort(&listing.SortOptions[0]).WithPage(2)

	q := s.Query()
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, []string{"c1"}, q.Categories)
	assert.Equal(t, "asc", q.Order)

	assert.Equal(t, 1, s.WithPage(0).Page())
}

func TestQueryValuesRepeatFilters(t *testing.T) {
	q := listing.NewState(false).ToggleBrand("b1").ToggleBrand("b2").Query()
	assert.Equal(t, []string{"b1", "b2"}, q.Values()["brand"])
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, listing.TotalPages(0))
	assert.Equal(t, 1, listing.TotalPages(12))
	assert.Equal(t, 2, listing.TotalPages(13))
	assert.Equal(t, 3, listing.TotalPages(30))
}

func TestShowingRange(t *testing.T) {
	from, to := listing.ShowingRange(1, 30)
	assert.Equal(t, [2]int64{1, 12}, [2]int64{from, to})

	from, to = listing.ShowingRange(3, 30)
	assert.Equal(t, [2]int64{25, 30}, [2]int64{from, to})

	from, to = listing.ShowingRange(4, 30)
	assert.Equal(t, [2]int64{0, 0}, [2]int64{from, to})
}
