package dto

import (
	"time"

	"reviewhub/internal/httpapi/models"
)

// CreateReviewDTO used for POST /titles/:title_id/reviews
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required,min=1,max=10"`
}

// UpdateReviewDTO used for PATCH .../reviews/:review_id
type UpdateReviewDTO struct {
	Text  *string `json:"text,omitempty"`
	Score *int    `json:"score,omitempty" binding:"omitempty,min=1,max=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	TitleID int64     `json:"title_id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func ReviewFromModel(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		TitleID: r.TitleID,
		Author:  r.Author.Username,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
