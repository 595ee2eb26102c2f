package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/meets/meets-go/internal/crypto"
	"github.com/meets/meets-go/internal/model"
	"github.com/meets/meets-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountTaken       = errors.New("username or email already taken")
	ErrAuthRequired       = errors.New("authentication required")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles signup, login and profile lookups.
type AuthService struct {
	repo      *repository.UserRepository
	validate  *validator.Validate
	jwtSecret string
	jwtExpiry time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.UserRepository, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		validate:  newValidator(),
		jwtSecret: secret,
		jwtExpiry: expiry,
		now:       time.Now,
	}
}

// Signup creates a new account and returns an auth token for it.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if err := validateStruct(s.validate, req); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	avatar, err := crypto.Avatar(req.Username)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Username,
		Email:          req.Email,
		Password:       hash,
		ProfilePicture: avatar,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return model.AuthResponse{}, ErrAccountTaken
		}
		return model.AuthResponse{}, err
	}

	return s.issue(user)
}

// Login authenticates by username or email. Unknown accounts and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)

	if err := validateStruct(s.validate, req); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.repo.GetByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUser returns the public profile of userID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.UserResponse, error) {
	if userID == "" {
		return model.UserResponse{}, ErrAuthRequired
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return model.NewUserResponse(user), nil
}

func (s *AuthService) issue(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  model.NewUserResponse(user),
	}, nil
}
