package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"snagdef/internal/model"
	"snagdef/internal/token"
	"snagdef/pkg/apierror"
)

// UserStore is the slice of the credential store the auth flow needs.
// Create must enforce username uniqueness at the storage layer.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	Count(ctx context.Context) (int, error)
}

type AuthService struct {
	users  UserStore
	codec  *token.Codec
	hasher PasswordHasher
}

func NewAuthService(users UserStore, codec *token.Codec, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, codec: codec, hasher: hasher}
}

// Register creates a user with the default role and hands back a fresh token
// pair. A duplicate username surfaces as model.ErrUserAlreadyExists from the
// store's uniqueness constraint, never from a check-then-insert.
func (s *AuthService) Register(ctx context.Context, username string, password string) (model.TokenPair, error) {
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return model.TokenPair{}, apierror.New("BAD_REQUEST", "username and password are required", "", http.StatusBadRequest)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.TokenPair{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.TokenPair{}, err
	}

	return s.issuePair(user.Username)
}

// Login collapses "unknown user" and "wrong password" into one error so the
// response never reveals whether the username exists.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, model.ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.issuePair(user.Username)
}

// Refresh rotates the pair: a valid refresh token yields a brand new access
// and refresh token. The subject must still resolve to a user, otherwise the
// credentials are stale regardless of the signature.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		return model.TokenPair{}, model.ErrInvalidToken
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.issuePair(user.Username)
}

// Seed creates an admin account when the store is empty. Role elevation has
// no endpoint; this is the out-of-band path for the first operator.
func (s *AuthService) Seed(ctx context.Context, username string, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := model.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		// Lost the race against a concurrent seed; the account exists.
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (s *AuthService) issuePair(subject string) (model.TokenPair, error) {
	accessToken, err := s.codec.IssueAccessToken(subject)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := s.codec.IssueRefreshToken(subject)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}
