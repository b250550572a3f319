package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/pkg/auth"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
	CreateUser(ctx context.Context, username, password string, permissions []string) (*model.AdminUser, error)
}

type adminService struct {
	repo   repository.AdminRepository
	tokens *auth.TokenManager
}

func NewAdminService(repo repository.AdminRepository, tokens *auth.TokenManager) AdminService {
	return &adminService{repo: repo, tokens: tokens}
}

// Login 校验密码并签发令牌；用户不存在与密码错误返回同一错误
func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, password) {
		logger.Warn("admin login rejected", zap.String("username", u.Username))
		return "", ErrInvalidCredentials
	}
	return s.tokens.Generate(u.ID, u.Username, u.PermissionList())
}

func (s *adminService) CreateUser(ctx context.Context, username, password string, permissions []string) (*model.AdminUser, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.AdminUser{
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		IsActive:     true,
		Permissions:  strings.Join(permissions, ","),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
