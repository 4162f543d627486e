package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billbook/internal/middleware"
	"billbook/internal/model"
	"billbook/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned on any login failure. The same error
// covers unknown usernames and wrong passwords so responses don't leak which
// accounts exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// --- DTOs ---

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Interface ---

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokenTTL time.Duration
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
		tokenTTL: 24 * time.Hour,
	}
}

// --- Implementation ---

func (s *userService) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return UserResponse{}, fmt.Errorf("username %s is already taken", req.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UserResponse{}, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResponse{}, ErrInvalidCredentials
		}
		return LoginResponse{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return LoginResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return LoginResponse{
		Token: signed,
		User:  toUserResponse(*user),
	}, nil
}

// --- Mapping ---

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
