package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/invorahq/invora/internal/auth/domain"
	"github.com/invorahq/invora/internal/auth/repository"
	"github.com/invorahq/invora/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func TestCreateUser(t *testing.T) {
	svc, _ := newService(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "Nino@Example.GE",
		Password: "long-enough",
		FullName: "Nino Kapanadze",
	})
	require.NoError(t, err)

	// Emails are normalized to lower case.
	assert.Equal(t, "nino@example.ge", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "long-enough", user.PasswordHash)

	_, err = svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "nino@example.ge",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "not-an-email",
		Password: "long-enough",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "ok@example.ge",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, fake := newService(t)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "levan@example.ge",
		Password: "long-enough",
	})
	require.NoError(t, err)

	session, user, rawToken, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "levan@example.ge",
		Password: "long-enough",
	})
	require.NoError(t, err)
	assert.Equal(t, "levan@example.ge", user.Email)
	assert.NotEmpty(t, rawToken)
	assert.NotEqual(t, rawToken, session.TokenHash)

	got, err := svc.Authenticate(context.Background(), rawToken)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	// Sessions expire after their TTL.
	fake.Advance(31 * 24 * time.Hour)
	_, err = svc.Authenticate(context.Background(), rawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "keti@example.ge",
		Password: "long-enough",
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "keti@example.ge",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, _, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.ge",
		Password: "long-enough",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "dato@example.ge",
		Password: "long-enough",
	})
	require.NoError(t, err)

	_, _, rawToken, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "dato@example.ge",
		Password: "long-enough",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), rawToken))

	_, err = svc.Authenticate(context.Background(), rawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)

	// Logging out twice is harmless.
	assert.NoError(t, svc.Logout(context.Background(), rawToken))
}

func TestAuthenticateUnknownToken(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Authenticate(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}
