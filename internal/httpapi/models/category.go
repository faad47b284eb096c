package models

// DefaultCategorySlug is attached to titles created without a category.
const (
	DefaultCategoryName = "Uncategorized"
	DefaultCategorySlug = "no-category"
)

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

func (Category) TableName() string {
	return "categories"
}
