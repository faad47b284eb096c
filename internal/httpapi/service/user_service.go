package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

var ErrInvalidRole = errors.New("unknown role")

type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated, error)
	Create(ctx context.Context, in dto.CreateUserDTO) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Update patches a user. allowRole controls whether in.Role is honored:
	// admins may change roles, self-updates may not.
	Update(ctx context.Context, user *models.User, in dto.UpdateUserDTO, allowRole bool) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated, error) {
	list, total, err := s.users.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, 0, len(list))
	for i := range list {
		resp = append(resp, dto.UserFromModel(&list[i]))
	}
	return dto.NewPaginated(total, page, pageSize, resp), nil
}

func (s *userService) Create(ctx context.Context, in dto.CreateUserDTO) (*models.User, error) {
	if err := ValidateUsername(in.Username); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *models.User, in dto.UpdateUserDTO, allowRole bool) (*models.User, error) {
	if in.Email != nil && *in.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, *in.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil && allowRole {
		role := models.Role(*in.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.users.DeleteByUsername(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
