package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/httpapi/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdateConfirmationHash(ctx context.Context, id, hash string) error
	DeleteByUsername(ctx context.Context, username string) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on miss so callers never see a zero-value user
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users ordered by username, optionally filtered by a
// case-insensitive username substring.
func (r *userRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.User{})
		if search != "" {
			q = q.Where("username ILIKE ?", "%"+search+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var list []models.User
	offset := (page - 1) * pageSize
	if err := query().Order("username asc").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return list, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateConfirmationHash(ctx context.Context, id, hash string) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("confirmation_hash", hash).Error; err != nil {
		return fmt.Errorf("update confirmation hash: %w", err)
	}
	return nil
}

func (r *userRepository) DeleteByUsername(ctx context.Context, username string) error {
	result := r.db.WithContext(ctx).Where("username = ?", username).Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
