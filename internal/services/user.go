package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// UserService is the identity collaborator: account creation and credential
// checks. Everything engagement-related lives in the other services.
type UserService struct {
	userStore UserStore
	timeout   time.Duration
	logger    *logger.Logger
}

func NewUserService(userStore UserStore, timeout time.Duration, logger *logger.Logger) *UserService {
	return &UserService{
		userStore: userStore,
		timeout:   timeout,
		logger:    logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"max=100"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	FullName   string `json:"full_name" binding:"max=100"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"cover_image"`
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	existing, err := s.userStore.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username %q is taken: %w", req.Username, models.ErrConflict)
	}

	existing, err = s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", models.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:  strings.ToLower(req.Username),
		Email:     req.Email,
		Password:  string(hashed),
		FullName:  req.FullName,
		CreatedAt: time.Now(),
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, storeErr(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userStore.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userStore.GetByID(ctx, userUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userUUID, models.ErrNotFound)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, userID string, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.CoverImage != "" {
		user.CoverImage = req.CoverImage
	}
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}
