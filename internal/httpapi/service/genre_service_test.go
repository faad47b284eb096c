package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
)

func TestCreateGenre_Success(t *testing.T) {
	mockGenres := new(MockGenreRepository)
	genreService := NewGenreService(mockGenres)

	mockGenres.On("FindBySlug", mock.Anything, "sci-fi").Return(nil, gorm.ErrRecordNotFound)
	mockGenres.On("Create", mock.Anything, mock.AnythingOfType("*models.Genre")).Return(nil)

	g, err := genreService.Create(context.Background(), dto.CreateGenreDTO{Name: " Science Fiction ", Slug: "sci-fi"})

	assert.NoError(t, err)
	assert.Equal(t, "Science Fiction", g.Name)
	assert.Equal(t, "sci-fi", g.Slug)
	mockGenres.AssertExpectations(t)
}

func TestCreateGenre_InvalidSlug(t *testing.T) {
	mockGenres := new(MockGenreRepository)
	genreService := NewGenreService(mockGenres)

	for _, slug := range []string{"bad slug", "ümlauts", "semi;colon", ""} {
		g, err := genreService.Create(context.Background(), dto.CreateGenreDTO{Name: "X", Slug: slug})
		assert.ErrorIs(t, err, ErrInvalidSlug, "slug %q", slug)
		assert.Nil(t, g)
	}
	mockGenres.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateGenre_SlugTaken(t *testing.T) {
	mockGenres := new(MockGenreRepository)
	genreService := NewGenreService(mockGenres)

	mockGenres.On("FindBySlug", mock.Anything, "drama").Return(&models.Genre{ID: 1, Slug: "drama"}, nil)

	g, err := genreService.Create(context.Background(), dto.CreateGenreDTO{Name: "Drama", Slug: "drama"})

	assert.ErrorIs(t, err, ErrSlugTaken)
	assert.Nil(t, g)
}

func TestDeleteGenre_NotFound(t *testing.T) {
	mockGenres := new(MockGenreRepository)
	genreService := NewGenreService(mockGenres)

	mockGenres.On("DeleteBySlug", mock.Anything, "ghost").Return(gorm.ErrRecordNotFound)

	err := genreService.Delete(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrGenreNotFound)
}
