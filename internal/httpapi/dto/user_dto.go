package dto

import "reviewhub/internal/httpapi/models"

// CreateUserDTO: admin-side user creation (role may be set here)
type CreateUserDTO struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// UpdateUserDTO: partial update, nil means "leave unchanged"
type UpdateUserDTO struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"`
	Role      *string `json:"role,omitempty"`
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func UserFromModel(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
	}
}
