package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/logging"
	"github.com/Noureldein28/security-todo/internal/server/auth"
	"github.com/Noureldein28/security-todo/internal/server/models"
	"github.com/Noureldein28/security-todo/internal/server/repositories/repomanager"
)

// dummyDigest is a valid bcrypt digest of a throwaway value. Login burns a
// comparison against it when the account does not exist, so the unknown-user
// and wrong-password paths cost roughly the same.
const dummyDigest = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// FederatedOutcome tags the three-way result of resolving an external
// identity: the provider id was already linked, an existing local account
// was matched by email and linked now, or a new account was created.
type FederatedOutcome string

const (
	FederatedLinked  FederatedOutcome = "linked"
	FederatedMatched FederatedOutcome = "matched"
	FederatedCreated FederatedOutcome = "created"
)

// UserService handles registration, login, logout and federated identity
// resolution. It sits above the credential primitives and the token service;
// passwords exist only transiently inside its calls.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	tokens *TokenService
	logger logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService, logger logging.Logger) *UserService {
	return &UserService{
		db:     db,
		repos:  m,
		tokens: tokens,
		logger: logger.With("module", "user_service"),
	}
}

// Register creates a password account and signs it in. The password is
// stored only as its bcrypt digest.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordDigest: digest,
		CreatedAt:      time.Now().UTC(),
	}

	user, err = s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, common.ErrorAlreadyExists
		}
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, pair, nil
}

// Login verifies the password and issues a token pair. Every failure mode
// (no such account, federated-only account, wrong password) collapses into
// common.ErrInvalidCredentials so responses do not reveal which part was
// wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Equalize cost with the wrong-password path.
			auth.CheckPassword(password, dummyDigest)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	// A federated-only account has no password digest; verification against
	// it must fail deterministically, whatever the password.
	if !user.HasPassword() || !auth.CheckPassword(password, user.PasswordDigest) {
		return nil, common.ErrInvalidCredentials
	}

	return s.tokens.IssuePair(ctx, user.ID)
}

// Logout revokes every active refresh token of the subject. Outstanding
// access tokens keep working until their short expiry; see
// TokenService.ValidateAccess.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	revoked, err := s.tokens.RevokeAll(ctx, userID)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "user logged out", "user_id", userID, "sessions_revoked", revoked)
	return nil
}

// ResolveFederatedIdentity implements the three-way linking decision for an
// external sign-in: match by provider subject id, else match by verified
// email and link, else create a federated-only account. The outcome tag
// makes the decision testable apart from any callback plumbing.
func (s *UserService) ResolveFederatedIdentity(ctx context.Context, providerUserID, email string) (FederatedOutcome, *models.User, error) {
	if providerUserID == "" {
		return "", nil, fmt.Errorf("%w: provider user id is required", common.ErrorValidation)
	}

	repo := s.repos.Users(s.db)

	user, err := repo.GetByFederatedID(ctx, providerUserID)
	if err == nil {
		return FederatedLinked, user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", nil, fmt.Errorf("resolving federated id: %w", err)
	}

	if email != "" {
		user, err = repo.GetByEmail(ctx, email)
		if err == nil {
			if err := repo.LinkFederatedID(ctx, user.ID, providerUserID); err != nil {
				return "", nil, fmt.Errorf("linking federated id: %w", err)
			}
			user.FederatedID = providerUserID
			s.logger.Info(ctx, "federated identity linked to existing account", "user_id", user.ID)
			return FederatedMatched, user, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return "", nil, fmt.Errorf("resolving email: %w", err)
		}
	}

	user = &models.User{
		ID:          uuid.NewString(),
		Email:       email,
		FederatedID: providerUserID,
		CreatedAt:   time.Now().UTC(),
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("creating federated user: %w", err)
	}

	s.logger.Info(ctx, "federated account created", "user_id", user.ID)
	return FederatedCreated, user, nil
}
