package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/httpapi/models"

	"gorm.io/gorm"
)

// TitleFilter carries the supported /titles list filters. Zero values mean
// "not filtered".
type TitleFilter struct {
	Genre    string // genre slug, exact
	Category string // category slug, exact
	Year     *int
	Name     string // case-insensitive substring
}

type TitleRepository interface {
	List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title) error
	ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Title{})
		if f.Genre != "" {
			q = q.Joins("JOIN title_genres tg ON tg.title_id = titles.id").
				Joins("JOIN genres g ON g.id = tg.genre_id").
				Where("g.slug = ?", f.Genre)
		}
		if f.Category != "" {
			q = q.Joins("JOIN categories c ON c.id = titles.category_id").
				Where("c.slug = ?", f.Category)
		}
		if f.Year != nil {
			q = q.Where("titles.year = ?", *f.Year)
		}
		if f.Name != "" {
			q = q.Where("titles.name ILIKE ?", "%"+f.Name+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	var list []models.Title
	offset := (page - 1) * pageSize
	if err := query().Preload("Genres").Preload("Category").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Preload("Genres").
		Preload("Category").
		First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	// GORM inserts the title_genres join rows from t.Genres
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).
		Omit("Genres").
		Save(t).Error; err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

// ReplaceGenres swaps the full genre set of a title.
func (r *titleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	if err := r.db.WithContext(ctx).Model(t).Association("Genres").Replace(genres); err != nil {
		return fmt.Errorf("replace genres: %w", err)
	}
	return nil
}

// Delete removes a title together with its join rows. Reviews and their
// comments go with it via ON DELETE CASCADE.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Title
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&t).Association("Genres").Clear(); err != nil {
			return fmt.Errorf("clear genres: %w", err)
		}
		if err := tx.Delete(&t).Error; err != nil {
			return fmt.Errorf("delete title: %w", err)
		}
		return nil
	})
}
