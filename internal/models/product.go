package models

import "time"

// Product represents a book in the catalog. Brand and Category are only
// populated when the product was loaded through a joining query.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title         string    `json:"title" gorm:"type:varchar(255);not null"`
	Summary       string    `json:"summary"`
	Price         float64   `json:"price" gorm:"not null"`
	BrandID       string    `json:"brandId" gorm:"type:varchar(36);not null;index"`
	Brand         *Brand    `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	CategoryID    string    `json:"categoryId" gorm:"type:varchar(36);not null;index"`
	Category      *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	StockQuantity int       `json:"stockQuantity" gorm:"not null;default:0"`
	CoverImage    string    `json:"coverImage" gorm:"not null"`
	IsDeleted     bool      `json:"isDeleted" gorm:"not null;default:false;index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductPatch carries a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Title         *string
	Summary       *string
	Price         *float64
	BrandID       *string
	CategoryID    *string
	StockQuantity *int
	CoverImage    *string
	IsDeleted     *bool
}

// Apply copies the non-nil fields of the patch onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Summary != nil {
		p.Summary = *pp.Summary
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.BrandID != nil {
		p.BrandID = *pp.BrandID
	}
	if pp.CategoryID != nil {
		p.CategoryID = *pp.CategoryID
	}
	if pp.StockQuantity != nil {
		p.StockQuantity = *pp.StockQuantity
	}
	if pp.CoverImage != nil {
		p.CoverImage = *pp.CoverImage
	}
	if pp.IsDeleted != nil {
		p.IsDeleted = *pp.IsDeleted
	}
}
