package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"authrelay/internal/cache"
	"authrelay/internal/models"
	"authrelay/internal/repository"
)

type ApiKeyService struct {
	base
	repo *repository.Repository[models.ApiKey]
}

func NewApiKeyService(db *gorm.DB, c *cache.Cache, log *zap.SugaredLogger) *ApiKeyService {
	return &ApiKeyService{
		base: base{cache: c, name: "ApiKeyService", log: log},
		repo: repository.New[models.ApiKey](db, "api_keys", models.ApiKeyColumns, "User"),
	}
}

// MintToken builds the bearer credential for a new key. The username makes
// the owner recognizable in request logs; the ulid keeps it unique.
func MintToken(username string) string {
	return fmt.Sprintf("apk_%s_%s", username, strings.ToLower(ulid.Make().String()))
}

func (s *ApiKeyService) List(ctx context.Context, q repository.FindQuery) (*repository.FindResult[models.ApiKey], error) {
	return s.repo.List(ctx, q, false)
}

func (s *ApiKeyService) GetByID(ctx context.Context, id string) (*models.ApiKey, error) {
	return s.repo.ReadByID(ctx, id, false)
}

func (s *ApiKeyService) Add(ctx context.Context, username, userID, name string) (*models.ApiKey, error) {
	key := models.ApiKey{
		Name:     name,
		Token:    MintToken(username),
		UserID:   userID,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, &key); err != nil {
		return nil, err
	}
	s.log.Infow("api key created", "api_key_id", key.ID)
	return &key, nil
}

// GetByToken resolves the key presented on a webhook trigger, eager-loading
// its owner. Returns gorm.ErrRecordNotFound when the token is unknown.
func (s *ApiKeyService) GetByToken(ctx context.Context, token string) (*models.ApiKey, error) {
	return s.repo.GetBy(ctx, "token", token, true)
}

func (s *ApiKeyService) Update(ctx context.Context, id string, changes map[string]any) (*models.ApiKey, error) {
	s.invalidate(ctx, id)
	return s.repo.Update(ctx, id, changes)
}

func (s *ApiKeyService) Delete(ctx context.Context, id string) error {
	s.invalidate(ctx, id)
	return s.repo.DeleteByID(ctx, id)
}
