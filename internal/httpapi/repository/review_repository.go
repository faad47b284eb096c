package repository

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/internal/httpapi/models"

	"gorm.io/gorm"
)

// ErrDuplicateReview is returned when an author already has a review on the
// title. The composite unique index on (title_id, author_id) backstops the
// pre-check against concurrent inserts.
var ErrDuplicateReview = errors.New("author already has a review on this title")

type ReviewRepository interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, titleID, reviewID int64) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ?", titleID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	var list []models.Review
	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return list, total, nil
}

// GetByID looks a review up under its title, so a review id reached through
// the wrong title path is a miss, not a leak.
func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Create inserts the review and recomputes the title rating in the same
// transaction, so the triggering request either commits both or neither.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Review{}).
			Where("title_id = ? AND author_id = ?", review.TitleID, review.AuthorID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check existing review: %w", err)
		}
		if count > 0 {
			return ErrDuplicateReview
		}
		if err := tx.Create(review).Error; err != nil {
			// concurrent creates can slip past the pre-check; the unique
			// index catches them and the error shape stays the same
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("create review: %w", err)
		}
		return recalculateTitleRating(tx, review.TitleID)
	})
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(review).Error; err != nil {
			return fmt.Errorf("update review: %w", err)
		}
		return recalculateTitleRating(tx, review.TitleID)
	})
}

func (r *reviewRepository) Delete(ctx context.Context, titleID, reviewID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND title_id = ?", reviewID, titleID).
			Delete(&models.Review{})
		if result.Error != nil {
			return fmt.Errorf("delete review: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return recalculateTitleRating(tx, titleID)
	})
}

// recalculateTitleRating is the single place the derived rating is written.
// It runs inside the transaction of the review write that triggered it:
// mean of current scores rounded to one decimal, NULL when no reviews remain.
func recalculateTitleRating(tx *gorm.DB, titleID int64) error {
	var scores []int
	if err := tx.Model(&models.Review{}).
		Where("title_id = ?", titleID).
		Pluck("score", &scores).Error; err != nil {
		return fmt.Errorf("collect scores: %w", err)
	}
	if err := tx.Model(&models.Title{}).
		Where("id = ?", titleID).
		Update("rating", models.AverageRating(scores)).Error; err != nil {
		return fmt.Errorf("update title rating: %w", err)
	}
	return nil
}
