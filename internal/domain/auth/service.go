package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/tx"
	"taller/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
}

// DefaultServiceConfig returns the default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 8,
	}
}

// Service provides login and user management.
type Service struct {
	users  UserRepository
	txm    tx.Manager
	jwtSvc *JWTService
	config ServiceConfig
}

func NewService(users UserRepository, txm tx.Manager, jwtSvc *JWTService, config ServiceConfig) *Service {
	return &Service{users: users, txm: txm, jwtSvc: jwtSvc, config: config}
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, email, password, name string, roles []string) (*User, error) {
	if email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if len(password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	exists, err := s.users.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(email, string(hash))
	user.Name = name
	user.Roles = roles
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user registered", "user_id", user.ID.String(), "email", user.Email)
	return user, nil
}

// Login verifies credentials and issues an access token. Failed attempts
// count toward a temporary lockout; the same Unauthorized error is returned
// for unknown emails and wrong passwords.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if updErr := s.users.Update(ctx, user); updErr != nil {
			logger.Error(ctx, "record failed login", "error", updErr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	tokenString, expiresAt, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	logger.Info(ctx, "user logged in", "user_id", user.ID.String())
	return &Token{
		AccessToken: tokenString,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, user, nil
}

func (s *Service) GetUser(ctx context.Context, email string) (*User, error) {
	return s.users.GetByEmail(ctx, email)
}

// GetUserByID resolves a user from a string ID, as carried in token claims.
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	parsed, err := id.Parse(userID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid user id")
	}
	return s.users.GetByID(ctx, parsed)
}
