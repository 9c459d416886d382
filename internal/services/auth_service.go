package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authrelay/internal/apperr"
	"authrelay/internal/auth"
	"authrelay/internal/models"
	"authrelay/internal/repository"
)

// SignInResult is the token response returned by sign-in and refresh.
type SignInResult struct {
	AccessToken string       `json:"access_token"`
	Expiration  time.Time    `json:"expiration"`
	UserInfo    *models.User `json:"user_info"`
}

type AuthService struct {
	users     *UserService
	repo      *repository.Repository[models.User]
	secret    string
	algorithm string
	tokenTTL  time.Duration
	log       *zap.SugaredLogger
}

func NewAuthService(db *gorm.DB, users *UserService, secret, algorithm string, tokenTTL time.Duration, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:     users,
		repo:      repository.New[models.User](db, "users", models.UserColumns),
		secret:    secret,
		algorithm: algorithm,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// SignUp registers a new user. Email and username conflicts surface as 409
// naming the offending field.
func (s *AuthService) SignUp(ctx context.Context, email, username, password string) (*models.User, error) {
	return s.users.Add(ctx, email, username, password)
}

// SignIn verifies the credentials and issues a time-limited bearer token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.repo.GetBy(ctx, "email", email, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}
	return s.issue(user)
}

// RefreshToken re-mints a token for an already-authenticated user.
func (s *AuthService) RefreshToken(user *models.User) (*SignInResult, error) {
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*SignInResult, error) {
	token, expiration, err := auth.Sign(user, s.secret, s.algorithm, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	s.log.Infow("access token issued", "user_id", user.ID)
	return &SignInResult{AccessToken: token, Expiration: expiration, UserInfo: user}, nil
}
