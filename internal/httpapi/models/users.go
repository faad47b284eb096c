package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of user roles. Stored as a plain string column,
// checked in Go via the capability methods below rather than subclassing.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// CanManageContent: write access on titles, genres, categories and users.
func (r Role) CanManageContent() bool {
	return r == RoleAdmin
}

// CanModerate: may edit or delete other users' reviews and comments.
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Bio       string `gorm:"type:text" json:"bio"`
	Role      Role   `gorm:"type:varchar(16);default:'user';not null" json:"role"`

	// bcrypt hash of the most recently issued confirmation code.
	// Empty when no code is outstanding. Never serialized.
	ConfirmationHash string `gorm:"column:confirmation_hash" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}
