package models

import "time"

// Review score bounds.
const (
	MinScore = 1
	MaxScore = 10
)

type Review struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID  int64  `json:"title_id" gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	AuthorID string `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_title_author"`
	Text     string `json:"text" gorm:"type:text;not null"`
	Score    int    `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`

	PubDate time.Time `json:"pub_date" gorm:"autoCreateTime"`

	// Associations
	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	Author User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
