package services

import (
	"math"
	"sort"
	"strings"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/models"
)

// ListParams is a product listing request as it arrives from the transport.
// Brand and Category may hold one id, several ids or comma separated ids.
// Page and Limit are nil when absent.
type ListParams struct {
	Brand    []string
	Category []string
	User     bool
	Sort     string
	Order    string
	Page     *int
	Limit    *int
}

// NormalizeListParams turns raw listing parameters into a ProductQuery.
// Pagination is applied only when both page and limit are given.
func NormalizeListParams(p ListParams) (models.ProductQuery, error) {
	q := models.ProductQuery{
		Brands:     idSet(p.Brand),
		Categories: idSet(p.Category),
		ActiveOnly: p.User,
	}

	if p.Sort != "" {
		if _, ok := models.SortableFields[p.Sort]; !ok {
			return q, apperrors.Invalid("sort", "unsupported sort field "+p.Sort)
		}
		order := strings.ToLower(p.Order)
		if order != "" && order != "asc" && order != "desc" {
			return q, apperrors.Invalid("order", "must be asc or desc")
		}
		q.Sort = &models.ProductSort{Field: p.Sort, Desc: order != "asc"}
	}

	if p.Page != nil && p.Limit != nil {
		if *p.Page < 1 {
			return q, apperrors.Invalid("page", "must be at least 1")
		}
		if *p.Limit < 1 {
			return q, apperrors.Invalid("limit", "must be at least 1")
		}
		if maxPage := math.MaxInt / *p.Limit; *p.Page-1 > maxPage {
			return q, apperrors.Invalid("page", "is out of range for the given limit")
		}
		q.Pagination = &models.Pagination{Page: *p.Page, Limit: *p.Limit}
	}
	return q, nil
}

// idSet splits, trims and de-duplicates ids. The result is sorted so equal
// filters produce equal queries.
func idSet(values []string) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				seen[id] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
