package models

// Brand is the author a book is published under.
type Brand struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`
}

// Category is the genre a book belongs to.
type Category struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`
}

