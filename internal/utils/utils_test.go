package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Running Shoes":         "running-shoes",
		"  Summer   Sale 2024 ": "summer-sale-2024",
		"T-Shirt & Hoodie":      "t-shirt-hoodie",
		"already-a-slug":        "already-a-slug",
		"!!!":                   "",
	}

	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestValidateSlugTag(t *testing.T) {
	type req struct {
		Slug string `validate:"omitempty,slug"`
	}

	assert.NoError(t, ValidateStruct(&req{Slug: "blue-mug"}))
	assert.NoError(t, ValidateStruct(&req{}))

	err := ValidateStruct(&req{Slug: "Blue Mug"})
	require.Error(t, err)
	errs := GetValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "slug", errs[0].Field)
	assert.Equal(t, "slug", errs[0].Tag)
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	userID := uuid.New()

	token, err := GenerateJWT(userID, "ada@example.com", "customer", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)

	refresh, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)
	subject, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)

	// access and refresh tokens are not interchangeable
	_, err = ValidateJWT(refresh)
	assert.Error(t, err)
	_, err = ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	SetJWTSecret("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ValidateJWT(signed)
	assert.Error(t, err)

	token, err := GenerateJWT(uuid.New(), "a@b.c", "admin", 1)
	require.NoError(t, err)
	SetJWTSecret("rotated")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestGenerateReferenceCode(t *testing.T) {
	code, err := GenerateReferenceCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Regexp(t, `^[A-Z2-9]+$`, code)
}
