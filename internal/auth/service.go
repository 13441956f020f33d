package auth

import (
	"context"
	gerrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mercagoods/storefront-backend/pkg/auth"
	"github.com/mercagoods/storefront-backend/pkg/config"
	"github.com/mercagoods/storefront-backend/pkg/db/models"
	pkgerrors "github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/security"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// LoginInput is the credential pair checked at login.
type LoginInput struct {
	Email    string
	Password string
}

// Session is a freshly authenticated user plus their access token.
type Session struct {
	User        *models.User
	AccessToken string
	ExpiresAt   time.Time
}

// Service handles registration and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
}

type service struct {
	repo     Repository
	jwtCfg   config.JWTConfig
	passwCfg config.PasswordConfig
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(repo Repository, jwtCfg config.JWTConfig, passwCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:     repo,
		jwtCfg:   jwtCfg,
		passwCfg: passwCfg,
		now:      time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if len(input.Password) < s.minPasswordLength() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", s.minPasswordLength()))
	}

	email := normalizeEmail(input.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
	} else if !gerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check existing account")
	}

	hash, err := security.HashPassword(input.Password, s.passwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     input.FullName,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create account")
	}

	return s.mintSession(user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if gerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load account")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	return s.mintSession(user)
}

func (s *service) mintSession(user *models.User) (*Session, error) {
	now := s.now()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to mint access token")
	}
	return &Session{
		User:        user,
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.AccessTokenTTL()),
	}, nil
}

func (s *service) minPasswordLength() int {
	if s.passwCfg.MinPasswordLength > 0 {
		return s.passwCfg.MinPasswordLength
	}
	return 8
}
