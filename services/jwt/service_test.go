package jwt

import (
	"testing"
	"time"

	"github.com/SteveElouga/waterbill-api/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return NewService(&config.Config{
		JWT: config.JWTConfig{
			SecretKey:     "test-secret-key-32-chars-long!!",
			Issuer:        "test-issuer",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
		},
	}, nil)
}

func TestGeneratePair(t *testing.T) {
	svc := testService()

	pair, err := svc.GeneratePair(42)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, 900, pair.ExpiresIn)

	access, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.Equal(t, "test-issuer", access.Issuer)
	assert.NotEmpty(t, access.JTI)

	refresh, err := svc.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.NotEqual(t, access.JTI, refresh.JTI)
}

func TestValidateToken(t *testing.T) {
	svc := testService()

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewService(&config.Config{
			JWT: config.JWTConfig{
				SecretKey:    "another-secret-key-32-chars-ok!",
				Issuer:       "test-issuer",
				AccessExpiry: time.Minute,
			},
		}, nil)

		token, err := other.GenerateAccessToken(1)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := NewService(&config.Config{
			JWT: config.JWTConfig{
				SecretKey:    "test-secret-key-32-chars-long!!",
				Issuer:       "test-issuer",
				AccessExpiry: -time.Minute,
			},
		}, nil)

		token, err := expired.GenerateAccessToken(1)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("rejects the none algorithm", func(t *testing.T) {
		claims := Claims{UserID: 1, TokenType: TokenTypeAccess}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
	})
}

func TestValidateAccessToken(t *testing.T) {
	svc := testService()
	pair, err := svc.GeneratePair(7)
	require.NoError(t, err)

	t.Run("accepts access tokens", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
	})

	t.Run("rejects refresh tokens", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}

func TestRefreshPair(t *testing.T) {
	svc := testService()
	pair, err := svc.GeneratePair(7)
	require.NoError(t, err)

	t.Run("rotates with a refresh token", func(t *testing.T) {
		rotated, err := svc.RefreshPair(pair.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(rotated.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
	})

	t.Run("refuses an access token", func(t *testing.T) {
		_, err := svc.RefreshPair(pair.AccessToken)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}
