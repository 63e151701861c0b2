// Package services implements the application services: the record pipeline
// over the crypto primitives, and the user/token services that make up the
// credential system.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/dbx"
	"github.com/Noureldein28/security-todo/internal/logging"
	"github.com/Noureldein28/security-todo/internal/server/auth"
	"github.com/Noureldein28/security-todo/internal/server/config"
	"github.com/Noureldein28/security-todo/internal/server/models"
	"github.com/Noureldein28/security-todo/internal/server/repositories/repomanager"
)

// refreshTokenBytes is the entropy of an opaque refresh token before hex
// encoding.
const refreshTokenBytes = 32

// errRotationLost signals inside Refresh that the compare-and-swap found no
// active row: the token is absent, already rotated, or revoked.
var errRotationLost = errors.New("rotation lost")

// TokenService issues, validates, rotates and revokes tokens. The refresh
// token store is the only shared mutable state in the core; rotation runs
// through a conditional UPDATE inside a transaction so concurrent refreshes
// of one token are serialized with exactly one winner.
type TokenService struct {
	db                           *sql.DB
	repos                        repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	logger                       logging.Logger
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *TokenService {
	return &TokenService{
		db:                           db,
		repos:                        m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		logger:                       logger.With("module", "token_service"),
	}
}

// IssueAccessToken signs a short-lived stateless access token for the
// subject.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return auth.GenerateAccessToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

// ValidateAccess checks signature and expiry and returns the subject id.
// It deliberately does not consult the refresh-token store: access tokens
// stay valid until natural expiry even after logout. The short access
// lifetime bounds that window.
func (s *TokenService) ValidateAccess(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// IssuePair mints a fresh access token and a fresh active refresh token for
// the subject. Used at registration, login and federated sign-in.
func (s *TokenService) IssuePair(ctx context.Context, userID string) (*models.TokenPair, error) {
	return s.issuePair(ctx, s.repos.RefreshTokens(s.db), userID)
}

func (s *TokenService) issuePair(ctx context.Context, repo refreshRepo, userID string) (*models.TokenPair, error) {
	accessToken, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}

	refreshToken, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	now := time.Now().UTC()
	err = repo.Create(ctx, &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     refreshToken,
		Status:    models.RefreshTokenActive,
		ExpiresAt: now.Add(s.refreshTokenValidityDuration),
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// refreshRepo is the subset of the refresh-token repository the service
// calls through a transaction handle.
type refreshRepo interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
}

// Refresh rotates a refresh token: the presented token is atomically marked
// rotated and a new pair is issued, all in one transaction. Exactly one of
// two concurrent calls with the same token succeeds; the other observes
// common.ErrInvalidToken.
//
// Replay of an already-rotated or revoked token is treated as evidence of
// theft: every active session of the subject is revoked before the request
// is rejected.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var tokenPair *models.TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.RefreshTokens(tx)

		consumed, err := repo.Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return errRotationLost
			}
			return fmt.Errorf("consuming refresh token: %w", err)
		}

		if consumed.Expired(time.Now()) {
			return common.ErrRefreshTokenExpired
		}

		tokenPair, err = s.issuePair(ctx, repo, consumed.UserID)
		return err
	})

	if errors.Is(err, errRotationLost) {
		return nil, s.handleLostRotation(ctx, refreshToken)
	}
	if err != nil {
		return nil, err
	}

	return tokenPair, nil
}

// handleLostRotation classifies a failed compare-and-swap. A token that
// exists in a terminal state was already used once: someone is replaying it,
// so all of the subject's sessions are revoked (reject-and-revoke-all).
// Runs outside the rotation transaction so the revocation is not rolled back
// with the rejected request.
func (s *TokenService) handleLostRotation(ctx context.Context, refreshToken string) error {
	repo := s.repos.RefreshTokens(s.db)

	stored, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("classifying refresh token: %w", err)
	}

	if stored.Status != models.RefreshTokenActive {
		revoked, err := repo.RevokeAllForUser(ctx, stored.UserID)
		if err != nil {
			s.logger.Error(ctx, "revoking sessions after refresh token replay", "error", err.Error())
		} else {
			s.logger.Warn(ctx, "refresh token replay detected, all sessions revoked",
				"user_id", stored.UserID, "sessions_revoked", revoked)
		}
	}

	return common.ErrInvalidToken
}

// RevokeAll marks every active refresh token of the subject revoked. Used on
// logout and on detected compromise.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	return s.repos.RefreshTokens(s.db).RevokeAllForUser(ctx, userID)
}

// PurgeExpired deletes refresh tokens past their expiry, in any state.
// Housekeeping; run periodically.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repos.RefreshTokens(s.db).DeleteExpired(ctx, time.Now().UTC())
}
