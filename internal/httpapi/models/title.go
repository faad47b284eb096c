package models

import "time"

type Title struct {
	ID          int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string   `json:"name" gorm:"size:256;not null"`
	Year        int      `json:"year" gorm:"not null"`
	Rating      *float64 `json:"rating" gorm:"type:decimal(3,1)"`
	Description string   `json:"description" gorm:"type:text"`

	// associations
	CategoryID *int64    `json:"-" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres     []Genre   `json:"genre,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

func (Title) TableName() string {
	return "titles"
}
