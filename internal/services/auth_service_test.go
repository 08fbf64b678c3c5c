package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

func TestAuth_RegisterLoginRefresh(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	svc := NewAuthService(db, cfg)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:    "New.User@Example.com",
		Password: "secret1",
		FullName: "New User",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", registered.User.Email)
	assert.Equal(t, models.UserRoleCustomer, registered.User.Role)
	assert.Equal(t, 3600, registered.ExpiresIn)

	claims, err := utils.ValidateJWT(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID.String(), claims.UserID)

	_, err = svc.Register(ctx, &RegisterRequest{Email: "new.user@example.com", Password: "secret2", FullName: "Dup"})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

	loggedIn, err := svc.Login(ctx, &LoginRequest{Email: "NEW.USER@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotNil(t, loggedIn.User.LastLoginAt)

	_, err = svc.Login(ctx, &LoginRequest{Email: "new.user@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	refreshed, err := svc.RefreshToken(ctx, loggedIn.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)

	// An access token is not a refresh token
	_, err = svc.RefreshToken(ctx, loggedIn.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuth_RegisterValidation(t *testing.T) {
	svc := NewAuthService(newTestDB(t), newTestConfig())

	_, err := svc.Register(context.Background(), &RegisterRequest{Email: "a@b.co", Password: "123", FullName: "Short"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuth_GetUserByID(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newTestConfig())
	user := createTestUser(t, db, "me@example.com")

	found, err := svc.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", found.Email)

	_, err = svc.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_ProfileAndPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "profile@example.com")

	name := "Renamed"
	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)

	err = svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newsecret"}))

	reloaded, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, reloaded.CheckPassword("newsecret"))
}
