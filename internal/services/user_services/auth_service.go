// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/healthadvisor/advisor-server/internal/auth"
	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/repository/user"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		logger:       logger,
	}
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", errors.New("email and password are required")
	}

	account, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed", "reason", "user_not_found")
		return nil, "", errors.New("invalid credentials")
	}

	if err := account.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed", "reason", "invalid_password", "user_id", account.ID)
		return nil, "", errors.New("invalid credentials")
	}

	token, err := auth.GenerateJWT(account.ID, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", account.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "user_id", account.ID)
	return account, token, nil
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validateRegistrationInput(email, password); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		s.logger.Warn("registration failed", "reason", "email_exists", "existing_user_id", existing.ID)
		return nil, errors.New("an account with this email already exists")
	}

	account := &domain.User{Email: email, Name: strings.TrimSpace(name)}
	if err := account.HashPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, account)
	if err != nil {
		s.logger.Error("user creation failed", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", created.ID)
	return created, nil
}

// ValidateJWTToken validates a token and returns the user id it carries.
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, errors.New("empty token")
	}
	return auth.ValidateToken(tokenString, []byte(s.jwtSecretKey))
}

func (s *AuthService) validateRegistrationInput(email, password string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email validation: invalid email address")
	}
	if len(password) < 8 {
		return fmt.Errorf("password validation: password must be at least 8 characters")
	}
	return nil
}
