package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated, error)
	Create(ctx context.Context, in dto.CreateCategoryDTO) (*models.Category, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(r repository.CategoryRepository) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated, error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, dto.CategoryFromModel(c))
	}
	return dto.NewPaginated(total, page, pageSize, resp), nil
}

func (s *categoryService) Create(ctx context.Context, in dto.CreateCategoryDTO) (*models.Category, error) {
	if !slugRe.MatchString(in.Slug) {
		return nil, ErrInvalidSlug
	}
	if _, err := s.repo.FindBySlug(ctx, in.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &models.Category{Name: strings.TrimSpace(in.Name), Slug: in.Slug}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
