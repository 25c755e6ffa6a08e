// Package services contains server-side business logic. This file implements
// AuthService: registration, login, access-token verification, and the
// refresh token rotation protocol.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/opavlenko/taskhub/internal/common"
	"github.com/opavlenko/taskhub/internal/dbx"
	"github.com/opavlenko/taskhub/internal/logging"
	"github.com/opavlenko/taskhub/internal/server/auth"
	"github.com/opavlenko/taskhub/internal/server/config"
	"github.com/opavlenko/taskhub/internal/server/models"
	"github.com/opavlenko/taskhub/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService provides authentication-related operations:
//   - Register: create users
//   - Login: verify credentials and mint tokens
//   - Refresh: rotate refresh tokens and mint new pairs
//   - Logout: revoke refresh tokens
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.Tokens
	hasher      auth.PasswordHasher
	logger      logging.Logger

	// dummyHash absorbs a bcrypt comparison when the username does not
	// exist, so login latency does not reveal account existence.
	dummyHash string
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	keys := auth.NewKeySet(cfg.SecretKey, cfg.PreviousSecretKeys...)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	dummyHash, _ := hasher.Hash(uuid.NewString())

	return &AuthService{
		db:          db,
		repomanager: m,
		tokens:      auth.NewTokens(keys, cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration),
		hasher:      hasher,
		logger:      logger.With("service", "auth"),
		dummyHash:   dummyHash,
	}
}

// Register creates a new active user with the given username, email, and
// password. A duplicate username or email yields common.ErrorAlreadyExists.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "user creation failed", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

// Login verifies the credentials and, on success, returns a new TokenPair.
// Every credential failure — unknown username, wrong password, inactive
// account — yields the same common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same bcrypt cost as a real comparison
			_, _ = s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok || !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, user.ID, s.db)
}

// Refresh validates a refresh token, consumes it, and returns a fresh
// TokenPair. A missing or deactivated subject yields
// common.ErrorUnauthorized before the token is touched. The consume and the
// new issuance run in one transaction: under concurrent calls with the same
// token, at most one caller succeeds and the rest observe
// common.ErrTokenRevoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	subject, tokenID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	// a deactivated or deleted user must not keep rotating tokens
	user, err := s.repomanager.Users(s.db).GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)

		won, err := repoTx.TryConsume(ctx, tokenID)
		if err != nil {
			s.logger.Error(ctx, "refresh token consume failed", "error", err)
			return common.ErrTokenStore
		}
		if !won {
			// consumed, revoked, expired in the store, or never recorded
			return common.ErrTokenRevoked
		}

		var genErr error
		pair, genErr = s.generateTokenPair(ctx, subject, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the presented refresh token. It works on expired tokens and
// is idempotent: revoking an already-revoked or consumed token succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.RefreshClaims(refreshToken)
	if err != nil {
		return err
	}

	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Revoke(ctx, claims.ID); err != nil {
		s.logger.Error(ctx, "refresh token revoke failed", "error", err)
		return common.ErrTokenStore
	}
	return nil
}

// VerifyAccessToken checks an access token and returns its subject (the user
// ID). Access tokens are stateless: no store lookup happens here.
func (s *AuthService) VerifyAccessToken(token string) (string, error) {
	return s.tokens.VerifyAccess(token)
}

// Me resolves the user record behind an authenticated subject. A missing or
// deactivated user yields common.ErrorUnauthorized.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// --- helpers below ---

func (s *AuthService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, tokenID, expiresAt, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// issuance counts only once the store has the row
	refreshRepo := s.repomanager.RefreshTokens(db)
	if err := refreshRepo.Insert(ctx, tokenID, userID, expiresAt); err != nil {
		s.logger.Error(ctx, "refresh token persist failed", "error", err)
		return nil, common.ErrTokenStore
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
