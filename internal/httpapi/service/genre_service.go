package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

var (
	ErrInvalidSlug   = errors.New("slug may only contain letters, digits, hyphens and underscores")
	ErrSlugTaken     = errors.New("slug already in use")
	ErrGenreNotFound = errors.New("genre not found")
)

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated, error)
	Create(ctx context.Context, in dto.CreateGenreDTO) (*models.Genre, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(r repository.GenreRepository) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated, error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.GenreResponse, 0, len(list))
	for _, g := range list {
		resp = append(resp, dto.GenreFromModel(g))
	}
	return dto.NewPaginated(total, page, pageSize, resp), nil
}

func (s *genreService) Create(ctx context.Context, in dto.CreateGenreDTO) (*models.Genre, error) {
	if !slugRe.MatchString(in.Slug) {
		return nil, ErrInvalidSlug
	}
	if _, err := s.repo.FindBySlug(ctx, in.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	g := &models.Genre{Name: strings.TrimSpace(in.Name), Slug: in.Slug}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}
