package dto

import "reviewhub/internal/httpapi/models"

// CreateTitleDTO used for POST /titles. Genre and category are resolved by
// slug; category may be omitted (the default sentinel category is attached).
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" binding:"required"`
	Category    string   `json:"category"`
}

// UpdateTitleDTO used for PATCH /titles/:title_id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Genre       *[]string `json:"genre,omitempty"`
	Category    *string   `json:"category,omitempty"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description string            `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func TitleFromModel(t *models.Title) TitleResponse {
	genres := make([]GenreResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, GenreFromModel(g))
	}
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
	}
	if t.Category != nil {
		c := CategoryFromModel(*t.Category)
		resp.Category = &c
	}
	return resp
}
