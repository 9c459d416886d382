package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authrelay/internal/auth"
	"authrelay/internal/cache"
	"authrelay/internal/models"
	"authrelay/internal/repository"
)

type UserService struct {
	base
	repo *repository.Repository[models.User]
}

func NewUserService(db *gorm.DB, c *cache.Cache, log *zap.SugaredLogger) *UserService {
	return &UserService{
		base: base{cache: c, name: "UserService", log: log},
		repo: repository.New[models.User](db, "users", models.UserColumns),
	}
}

func (s *UserService) List(ctx context.Context, q repository.FindQuery) (*repository.FindResult[models.User], error) {
	return s.repo.List(ctx, q, false)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.ReadByID(ctx, id, false)
}

// Add hashes the password and persists the user with the default role.
func (s *UserService) Add(ctx context.Context, email, username, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:    email,
		Username: username,
		Password: hash,
		Role:     models.RoleBaseUser,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, err
	}
	s.log.Infow("user created", "user_id", user.ID)
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id string, changes map[string]any) (*models.User, error) {
	s.invalidate(ctx, id)
	return s.repo.Update(ctx, id, changes)
}

// SetActive soft-enables or soft-disables the user.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	s.invalidate(ctx, id)
	_, err := s.repo.UpdateAttr(ctx, id, "is_active", active)
	return err
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	s.invalidate(ctx, id)
	return s.repo.DeleteByID(ctx, id)
}
