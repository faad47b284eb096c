package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/httpapi/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	GetByID(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Joins("JOIN reviews ON reviews.id = comments.review_id").
		Where("comments.review_id = ? AND reviews.title_id = ?", reviewID, titleID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	var list []models.Comment
	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Joins("JOIN reviews ON reviews.id = comments.review_id").
		Where("comments.review_id = ? AND reviews.title_id = ?", reviewID, titleID).
		Preload("Author").
		Order("comments.pub_date asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return list, total, nil
}

// GetByID verifies the full containment chain comment -> review -> title;
// a comment reached through a mismatched review or title is a miss.
func (r *commentRepository) GetByID(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Joins("JOIN reviews ON reviews.id = comments.review_id").
		Where("comments.id = ? AND comments.review_id = ? AND reviews.title_id = ?",
			commentID, reviewID, titleID).
		Preload("Author").
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Delete(comment).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
