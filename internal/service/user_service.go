package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/internal/repository"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
)

// UserService account administration
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	SetRole(ctx context.Context, id string, req *dto.UpdateRoleRequest, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Store("get user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.User.Create(ctx, user); err != nil {
			s.logger.Error("create user failed", zap.Error(err))
			return apperrors.Store("create user", err)
		}
		if err := txRepo.User.SetRole(ctx, user.ID, role); err != nil {
			s.logger.Error("set role failed", zap.String("user_id", user.ID), zap.Error(err))
			return apperrors.Store("set role", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Role = &model.UserRole{UserID: user.ID, Role: role}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("get user failed", zap.String("id", id), zap.Error(err))
		}
		return nil, lookupErr(err, ErrUserNotFound, "get user")
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, apperrors.Store("list users", err)
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── SetRole ──────────────────────

func (s *userService) SetRole(ctx context.Context, id string, req *dto.UpdateRoleRequest, callerID string) error {
	if id == callerID {
		return ErrUserSelfRoleChange
	}

	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		return lookupErr(err, ErrUserNotFound, "get user")
	}

	if err := s.repo.User.SetRole(ctx, id, req.Role); err != nil {
		s.logger.Error("set role failed", zap.String("id", id), zap.Error(err))
		return apperrors.Store("set role", err)
	}

	s.logger.Info("role changed", zap.String("user_id", id), zap.String("role", req.Role), zap.String("by", callerID))
	return nil
}
