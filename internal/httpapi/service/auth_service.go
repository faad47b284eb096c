package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/mailer"
)

var (
	ErrUsernameReserved = errors.New("username 'me' is reserved")
	ErrInvalidUsername  = errors.New("username contains invalid characters")
	ErrUsernameTaken    = errors.New("username already in use")
	ErrEmailTaken       = errors.New("email already in use")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidCode      = errors.New("invalid confirmation code")
	ErrInvalidToken     = errors.New("invalid token")
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidateUsername enforces the allowed character set and the reserved
// literal "me" (it addresses the caller's own profile in the users API).
func ValidateUsername(username string) error {
	if username == "me" {
		return ErrUsernameReserved
	}
	if !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// Claims is the payload of the signed bearer token.
type Claims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	Token(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	users     repository.UserRepository
	mail      mailer.Mailer
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users repository.UserRepository, mail mailer.Mailer, cfg *config.Config) AuthService {
	return &authService{
		users:     users,
		mail:      mail,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.JWTExpiry,
	}
}

// Signup registers the (username, email) pair, or resends a fresh
// confirmation code when the exact pair already exists. Every call rotates
// the stored code, so older codes stop working.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	byName, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	byEmail, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user *models.User
	switch {
	case byName != nil && byName.Email == email:
		// resend for the existing pair
		user = byName
	case byName != nil:
		return nil, ErrUsernameTaken
	case byEmail != nil:
		return nil, ErrEmailTaken
	default:
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	code, err := generateConfirmationCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateConfirmationHash(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}

	if err := s.mail.SendConfirmationCode(email, code); err != nil {
		return nil, err
	}
	return user, nil
}

// Token exchanges a valid confirmation code for a signed bearer token. The
// stored code hash is cleared on success, so a code cannot be replayed.
func (s *authService) Token(ctx context.Context, username, code string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.ConfirmationHash == "" {
		return "", ErrInvalidCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.ConfirmationHash), []byte(code)); err != nil {
		return "", ErrInvalidCode
	}

	// sign first: a signing failure must not burn the code
	token, err := s.generateToken(user)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateConfirmationHash(ctx, user.ID, ""); err != nil {
		return "", err
	}
	return token, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// generateConfirmationCode returns 32 random bytes as URL-safe base64.
func generateConfirmationCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
