package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/httpapi/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Genre{})
		if search != "" {
			q = q.Where("name ILIKE ?", "%"+search+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}

	var list []models.Genre
	offset := (page - 1) * pageSize
	if err := query().Order("name asc").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}
	return list, total, nil
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// FindBySlugs returns the genres matching the given slugs. Callers compare
// lengths to detect unknown slugs.
func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find genres by slugs: %w", err)
	}
	return list, nil
}

func (r *genreRepository) Create(ctx context.Context, g *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Genre{})
	if result.Error != nil {
		return fmt.Errorf("delete genre: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
