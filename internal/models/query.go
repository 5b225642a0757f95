package models

import "slices"

// SortField names a sortable product attribute in each store.
type SortField struct {
	Column   string // SQL column
	Document string // Mongo document field
}

// SortableFields lists the keys accepted by the listing "sort" parameter.
var SortableFields = map[string]SortField{
	"title":         {Column: "title", Document: "title"},
	"price":         {Column: "price", Document: "price"},
	"stockQuantity": {Column: "stock_quantity", Document: "stockQuantity"},
	"createdAt":     {Column: "created_at", Document: "createdAt"},
	"updatedAt":     {Column: "updated_at", Document: "updatedAt"},
}

// ProductSort orders a listing by one field.
type ProductSort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Pagination selects a 1-indexed page of Limit documents.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Skip returns the number of matching documents before the page.
func (p Pagination) Skip() int {
	return p.Limit * (p.Page - 1)
}

// ProductQuery is the normalized listing descriptor handed to repositories.
// Empty Brands or Categories means no restriction on that reference.
type ProductQuery struct {
	Brands     []string     `json:"brands,omitempty"`
	Categories []string     `json:"categories,omitempty"`
	ActiveOnly bool         `json:"activeOnly"`
	Sort       *ProductSort `json:"sort,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// Matches reports whether p passes the query's filters.
func (q ProductQuery) Matches(p *Product) bool {
	if q.ActiveOnly && p.IsDeleted {
		return false
	}
	if len(q.Brands) > 0 && !slices.Contains(q.Brands, p.BrandID) {
		return false
	}
	if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.CategoryID) {
		return false
	}
	return true
}

// ProductPage is one page of a listing plus the total number of matches.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
}
