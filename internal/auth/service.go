package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
)

// tokenTTL is how long issued JWTs stay valid
const tokenTTL = 7 * 24 * time.Hour

// resetTokenTTL is how long a password reset token stays redeemable
const resetTokenTTL = time.Hour

// Service handles authentication operations
type Service struct {
	jwtSecret []byte
}

// NewService creates a new authentication service
func NewService(jwtSecret []byte) *Service {
	return &Service{jwtSecret: jwtSecret}
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=50"`
	Credential  string `json:"credential,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user with email/password
func (s *Service) Register(req RegisterRequest) (*AuthResponse, error) {
	// Check if user exists by email (case-insensitive)
	var existingUser models.User
	err := database.DB.Where("LOWER(email) = LOWER(?)", req.Email).First(&existingUser).Error
	if err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Check if username is taken
	var usernameCheck models.User
	err = database.DB.Where("LOWER(username) = LOWER(?)", req.Username).First(&usernameCheck).Error
	if err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		Credential:   req.Credential,
		Specialty:    req.Specialty,
		PasswordHash: &hashStr,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(&user)
}

// Login authenticates a user by email and password
func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	var user models.User
	err := database.DB.Where("LOWER(email) = LOWER(?)", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	database.DB.Model(&user).UpdateColumn("last_active_at", now)

	return s.issueToken(&user)
}

// issueToken mints a signed JWT for the user
func (s *Service) issueToken(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().UTC().Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResponse{
		Token:     signed,
		User:      *user,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses and validates a JWT, returning the user ID
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// RequestPasswordReset creates a reset token for the account behind email.
// A nil token with a nil error means no resettable account exists; callers
// must not reveal which case occurred.
func (s *Service) RequestPasswordReset(email string) (*models.PasswordReset, error) {
	var user models.User
	err := database.DB.Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, nil
	}

	token := models.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.New().String() + uuid.New().String(),
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}
	if err := database.DB.Create(&token).Error; err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return &token, nil
}

// ResetPassword redeems a reset token and replaces the user's password
func (s *Service) ResetPassword(token, newPassword string) error {
	var resetToken models.PasswordReset
	err := database.DB.Where("token = ? AND used = ? AND expires_at > ?", token, false, time.Now().UTC()).
		First(&resetToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResetTokenInvalid
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	if err := database.DB.Model(&models.User{}).Where("id = ?", resetToken.UserID).
		UpdateColumn("password_hash", hashStr).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// The password is already replaced; a token left unmarked only keeps
	// its remaining one-hour window open
	if err := database.DB.Model(&resetToken).UpdateColumn("used", true).Error; err != nil {
		logger.WarnWithFields("Failed to mark reset token used", err)
	}

	return nil
}
