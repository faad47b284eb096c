package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/httpapi/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	DeleteBySlug(ctx context.Context, slug string) error
	GetOrCreateDefault(ctx context.Context) (*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Category{})
		if search != "" {
			q = q.Where("name ILIKE ?", "%"+search+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	var list []models.Category
	offset := (page - 1) * pageSize
	if err := query().Order("name asc").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return list, total, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// DeleteBySlug removes the category. Titles referencing it keep existing
// with category unset (ON DELETE SET NULL).
func (r *categoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetOrCreateDefault returns the sentinel category attached to titles
// created without an explicit one.
func (r *categoryRepository) GetOrCreateDefault(ctx context.Context) (*models.Category, error) {
	c := models.Category{
		Name: models.DefaultCategoryName,
		Slug: models.DefaultCategorySlug,
	}
	if err := r.db.WithContext(ctx).
		Where(models.Category{Slug: models.DefaultCategorySlug}).
		FirstOrCreate(&c).Error; err != nil {
		return nil, fmt.Errorf("get or create default category: %w", err)
	}
	return &c, nil
}
