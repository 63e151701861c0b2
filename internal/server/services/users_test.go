package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/server/models"
	refreshtokensrepo "github.com/Noureldein28/security-todo/internal/server/repositories/refreshtokens"
	usersrepo "github.com/Noureldein28/security-todo/internal/server/repositories/users"
)

func newUserService(t *testing.T, db *sql.DB) (*UserService, *fakeRepoManager) {
	t.Helper()
	rm := &fakeRepoManager{
		users:   usersrepo.NewInMemoryRepository(),
		refresh: refreshtokensrepo.NewInMemoryRepository(),
	}
	tokens := newTokenService(t, db, rm)
	return NewUserService(db, rm, tokens, testLogger()), rm
}

func TestRegister_And_Login(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, _ := newUserService(t, db)
	ctx := context.Background()

	user, pair, err := s.Register(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == "" || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("Register result: user=%+v pair=%+v", user, pair)
	}
	if user.PasswordDigest == "s3cret" {
		t.Fatalf("password stored in the clear")
	}

	loginPair, err := s.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if loginPair.AccessToken == "" || loginPair.RefreshToken == pair.RefreshToken {
		t.Fatalf("Login pair: %+v", loginPair)
	}
}

func TestRegister_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, _ := newUserService(t, db)

	if _, _, err := s.Register(context.Background(), "", "pw"); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("empty email: want ErrorValidation, got %v", err)
	}
	if _, _, err := s.Register(context.Background(), "a@b.c", ""); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("empty password: want ErrorValidation, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, _ := newUserService(t, db)
	ctx := context.Background()

	if _, _, err := s.Register(ctx, "alice@example.com", "pw1"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, _, err := s.Register(ctx, "alice@example.com", "pw2"); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("duplicate: want ErrorAlreadyExists, got %v", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, rm := newUserService(t, db)
	ctx := context.Background()

	if _, _, err := s.Register(ctx, "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// wrong password and unknown account collapse into the same error
	if _, err := s.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Login(ctx, "ghost@example.com", "s3cret"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("unknown account: want ErrInvalidCredentials, got %v", err)
	}

	// a federated-only account has no password to verify against
	_, err := rm.users.Create(ctx, &models.User{
		ID: "fed1", Email: "sso@example.com", FederatedID: "google-123",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := s.Login(ctx, "sso@example.com", "anything"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("federated-only: want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogout_RevokesSessions(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, rm := newUserService(t, db)
	ctx := context.Background()

	user, pair, err := s.Register(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := s.Logout(ctx, user.ID); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	stored, err := rm.refresh.Find(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if stored.Status != models.RefreshTokenRevoked {
		t.Fatalf("refresh token not revoked after logout: %v", stored.Status)
	}
}

func TestResolveFederatedIdentity_Outcomes(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s, _ := newUserService(t, db)
	ctx := context.Background()

	// no local account at all -> created
	outcome, created, err := s.ResolveFederatedIdentity(ctx, "google-123", "new@example.com")
	if err != nil || outcome != FederatedCreated {
		t.Fatalf("create: got (%v, %v)", outcome, err)
	}
	if created.FederatedID != "google-123" || created.HasPassword() {
		t.Fatalf("created account: %+v", created)
	}

	// same provider id again -> linked, same account
	outcome, linked, err := s.ResolveFederatedIdentity(ctx, "google-123", "new@example.com")
	if err != nil || outcome != FederatedLinked || linked.ID != created.ID {
		t.Fatalf("linked: got (%v, %v, %+v)", outcome, err, linked)
	}

	// existing password account matched by email -> linked now
	existing, _, err := s.Register(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	outcome, matched, err := s.ResolveFederatedIdentity(ctx, "google-456", "alice@example.com")
	if err != nil || outcome != FederatedMatched || matched.ID != existing.ID {
		t.Fatalf("matched: got (%v, %v, %+v)", outcome, err, matched)
	}
	if matched.FederatedID != "google-456" {
		t.Fatalf("federated id not linked: %+v", matched)
	}

	// missing provider id is a caller bug
	if _, _, err := s.ResolveFederatedIdentity(ctx, "", "x@example.com"); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
}
