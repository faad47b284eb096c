package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/cache"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

var (
	ErrTitleNotFound = errors.New("title not found")
	ErrYearInFuture  = errors.New("year must not exceed the current year")
	ErrEmptyGenre    = errors.New("genre list must not be empty")
	ErrUnknownGenre  = errors.New("unknown genre slug")
)

type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.Paginated, error)
	GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	genres     repository.GenreRepository
	categories repository.CategoryRepository
	cache      *cache.Cache
}

func NewTitleService(
	titles repository.TitleRepository,
	genres repository.GenreRepository,
	categories repository.CategoryRepository,
	c *cache.Cache,
) TitleService {
	return &titleService{
		titles:     titles,
		genres:     genres,
		categories: categories,
		cache:      c,
	}
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.Paginated, error) {
	list, total, err := s.titles.List(ctx, f, page, pageSize)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TitleResponse, 0, len(list))
	for i := range list {
		resp = append(resp, dto.TitleFromModel(&list[i]))
	}
	return dto.NewPaginated(total, page, pageSize, resp), nil
}

func (s *titleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	key := cache.TitleKey(id)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var resp dto.TitleResponse
		if err := json.Unmarshal(raw, &resp); err == nil {
			return &resp, nil
		}
	}

	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	resp := dto.TitleFromModel(t)
	if raw, err := json.Marshal(resp); err == nil {
		// best-effort: a failed cache write never fails the read
		_ = s.cache.Set(ctx, key, raw)
	}
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if in.Year > time.Now().Year() {
		return nil, ErrYearInFuture
	}

	genres, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	t := &models.Title{
		Name:        strings.TrimSpace(in.Name),
		Year:        in.Year,
		Description: in.Description,
		CategoryID:  &category.ID,
		Genres:      genres,
	}
	if err := s.titles.Create(ctx, t); err != nil {
		return nil, err
	}
	t.Category = category

	resp := dto.TitleFromModel(t)
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if in.Year != nil {
		if *in.Year > time.Now().Year() {
			return nil, ErrYearInFuture
		}
		t.Year = *in.Year
	}
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Category != nil {
		category, err := s.resolveCategory(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		t.CategoryID = &category.ID
		t.Category = category
	}

	if err := s.titles.Update(ctx, t); err != nil {
		return nil, err
	}

	if in.Genre != nil {
		genres, err := s.resolveGenres(ctx, *in.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.titles.ReplaceGenres(ctx, t, genres); err != nil {
			return nil, err
		}
		t.Genres = genres
	}

	if err := s.cache.Delete(ctx, cache.TitleKey(id)); err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(t)
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titles.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return s.cache.Delete(ctx, cache.TitleKey(id))
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, ErrEmptyGenre
	}
	genres, err := s.genres.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		return nil, ErrUnknownGenre
	}
	return genres, nil
}

// resolveCategory maps a slug to its category; an empty slug resolves to the
// default sentinel category rather than failing.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	if slug == "" {
		return s.categories.GetOrCreateDefault(ctx)
	}
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}
