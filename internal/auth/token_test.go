package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anna-paula-dante/employee-registration/internal/config"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             testJWTSecret,
		Issuer:                "people-manager",
		Audience:              "people-manager-clients",
		AccessTokenTTLMinutes: 120,
	}
}

func testEmployee(role domain.Role) *domain.Employee {
	return &domain.Employee{
		ID:             "00000000-0000-0000-0000-000000000001",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		DocumentNumber: "12345678900",
		Role:           role,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())

	token, issued, err := tm.GenerateToken(testEmployee(domain.RoleDirector))
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", claims.SubjectID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "12345678900", claims.DocumentNumber)
	assert.Equal(t, domain.RoleDirector, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(120*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestTokenManager_Expired(t *testing.T) {
	past := time.Now().Add(-3 * time.Hour)
	issuer := NewTokenManager(testAuthConfig(), WithClock(func() time.Time { return past }))
	verifier := NewTokenManager(testAuthConfig())

	token, _, err := issuer.GenerateToken(testEmployee(domain.RoleEmployee))
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	other := testAuthConfig()
	other.JWTSecret = "another-secret"
	token, _, err := NewTokenManager(other).GenerateToken(testEmployee(domain.RoleLeader))
	require.NoError(t, err)

	_, err = NewTokenManager(testAuthConfig()).ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestTokenManager_TamperedPayload(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	token, _, err := tm.GenerateToken(testEmployee(domain.RoleEmployee))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := NewTokenManager(testAuthConfig()).GenerateToken(testEmployee(domain.RoleDirector))
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = tm.ParseToken(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestTokenManager_WrongAudience(t *testing.T) {
	other := testAuthConfig()
	other.Audience = "someone-else"
	token, _, err := NewTokenManager(other).GenerateToken(testEmployee(domain.RoleEmployee))
	require.NoError(t, err)

	_, err = NewTokenManager(testAuthConfig()).ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		Role: domain.RoleDirector,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x",
			Issuer:    "people-manager",
			Audience:  jwt.ClaimStrings{"people-manager-clients"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager(testAuthConfig()).ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Admin@12345", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "Admin@12345"))
	assert.Error(t, ComparePassword(hash, "admin@12345"))
}
