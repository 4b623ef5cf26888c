package auth

import (
	"errors"
	"testing"

	jwtsvc "github.com/SteveElouga/waterbill-api/services/jwt"
	"github.com/SteveElouga/waterbill-api/services/users"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"github.com/SteveElouga/waterbill-api/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	svc     *Service
	gateway *testutils.MockSmsGateway
	users   *users.Service
}

func setupAuth(t *testing.T) *testEnv {
	db := testutils.SetupTestDB(t,
		&users.User{},
		&users.PhoneAllowlistEntry{},
		&verification.Token{},
		&verification.ActivationToken{},
	)
	cfg := testutils.GetTestConfig()
	gateway := &testutils.MockSmsGateway{}

	usersService := users.NewService(db, nil)
	allowlist := users.NewAllowlistService(db, nil)
	verificationService := verification.NewService(db, cfg, nil)
	jwtService := jwtsvc.NewService(cfg, nil)

	svc := NewService(cfg, db, usersService, allowlist, verificationService, gateway, jwtService, nil)

	return &testEnv{
		db:      db,
		svc:     svc,
		gateway: gateway,
		users:   usersService,
	}
}

func (e *testEnv) allow(t *testing.T, phone string) {
	t.Helper()
	_, err := users.NewAllowlistService(e.db, nil).Authorize(phone, nil, "")
	require.NoError(t, err)
}

func registerInput(phone string) RegisterInput {
	return RegisterInput{
		Phone:     phone,
		Password:  testutils.TestPasswords.Valid,
		FirstName: "Jean",
		LastName:  "Mbarga",
	}
}

func TestValidatePassword(t *testing.T) {
	env := setupAuth(t)

	t.Run("accepts a conforming password", func(t *testing.T) {
		assert.NoError(t, env.svc.ValidatePassword(testutils.TestPasswords.Valid))
	})

	t.Run("rejects short password", func(t *testing.T) {
		assert.ErrorIs(t, env.svc.ValidatePassword(testutils.TestPasswords.TooShort), ErrPasswordPolicy)
	})

	t.Run("rejects missing character classes", func(t *testing.T) {
		assert.ErrorIs(t, env.svc.ValidatePassword(testutils.TestPasswords.NoUpper), ErrPasswordPolicy)
		assert.ErrorIs(t, env.svc.ValidatePassword(testutils.TestPasswords.NoLower), ErrPasswordPolicy)
		assert.ErrorIs(t, env.svc.ValidatePassword(testutils.TestPasswords.NoNumber), ErrPasswordPolicy)
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	env := setupAuth(t)

	hash, err := env.svc.HashPassword(testutils.TestPasswords.Valid)
	require.NoError(t, err)
	assert.NotEqual(t, testutils.TestPasswords.Valid, hash)

	assert.NoError(t, env.svc.VerifyPassword(hash, testutils.TestPasswords.Valid))
	assert.ErrorIs(t, env.svc.VerifyPassword(hash, "WrongPass1"), ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	t.Run("creates inactive account and activation token", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(true)
		env.gateway.On("SendCode", testutils.TestPhones.Valid, mock.AnythingOfType("string")).Return(true, nil)

		user, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		require.NoError(t, err)
		assert.False(t, user.Active)
		assert.Equal(t, testutils.TestPhones.Valid, user.Phone)

		var count int64
		require.NoError(t, env.db.Model(&verification.ActivationToken{}).
			Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		env.gateway.AssertExpectations(t)
	})

	t.Run("normalizes the phone before storing", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(true)
		env.gateway.On("SendCode", testutils.TestPhones.Valid, mock.AnythingOfType("string")).Return(true, nil)

		user, err := env.svc.Register(registerInput(testutils.TestPhones.Formatted))
		require.NoError(t, err)
		assert.Equal(t, testutils.TestPhones.Valid, user.Phone)
	})

	t.Run("rejects phones off the allowlist", func(t *testing.T) {
		env := setupAuth(t)

		_, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		assert.ErrorIs(t, err, ErrPhoneNotAllowed)
	})

	t.Run("rejects weak passwords before any side effect", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)

		input := registerInput(testutils.TestPhones.Valid)
		input.Password = testutils.TestPasswords.TooShort
		_, err := env.svc.Register(input)
		assert.ErrorIs(t, err, ErrPasswordPolicy)
	})

	t.Run("rejects duplicate phone", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(true)
		env.gateway.On("SendCode", testutils.TestPhones.Valid, mock.AnythingOfType("string")).Return(true, nil)

		_, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		require.NoError(t, err)

		_, err = env.svc.Register(registerInput(testutils.TestPhones.Valid))
		assert.ErrorIs(t, err, users.ErrPhoneTaken)
	})

	t.Run("gateway unavailable rolls back the account", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(false)

		_, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		assert.ErrorIs(t, err, ErrSmsUnavailable)
		assertNoUser(t, env, testutils.TestPhones.Valid)
	})

	t.Run("failed send rolls back the account", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(true)
		env.gateway.On("SendCode", testutils.TestPhones.Valid, mock.AnythingOfType("string")).Return(false, nil)

		_, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		assert.ErrorIs(t, err, ErrSmsSendFailed)
		assertNoUser(t, env, testutils.TestPhones.Valid)
	})

	t.Run("send error rolls back the account", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(true)
		env.gateway.On("SendCode", testutils.TestPhones.Valid, mock.AnythingOfType("string")).
			Return(false, errors.New("carrier timeout"))

		_, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		assert.ErrorIs(t, err, ErrSmsSendFailed)
		assertNoUser(t, env, testutils.TestPhones.Valid)
	})
}

func assertNoUser(t *testing.T, env *testEnv, phone string) {
	t.Helper()

	var userCount, tokenCount int64
	require.NoError(t, env.db.Model(&users.User{}).Where("phone = ?", phone).Count(&userCount).Error)
	require.NoError(t, env.db.Model(&verification.ActivationToken{}).Count(&tokenCount).Error)
	assert.Equal(t, int64(0), userCount, "user row must not survive a failed registration")
	assert.Equal(t, int64(0), tokenCount, "activation token must not survive a failed registration")
}

func TestLogin(t *testing.T) {
	registerActive := func(t *testing.T, env *testEnv) *users.User {
		t.Helper()
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(true)
		env.gateway.On("SendCode", mock.Anything, mock.Anything).Return(true, nil)

		user, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		require.NoError(t, err)
		require.NoError(t, env.db.Model(user).Update("active", true).Error)
		user.Active = true
		return user
	}

	t.Run("issues a token pair for valid credentials", func(t *testing.T) {
		env := setupAuth(t)
		registerActive(t, env)

		user, pair, err := env.svc.Login(testutils.TestPhones.Valid, testutils.TestPasswords.Valid, "Mozilla/5.0")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotNil(t, user.LastLogin)
	})

	t.Run("accepts formatted phone input", func(t *testing.T) {
		env := setupAuth(t)
		registerActive(t, env)

		_, _, err := env.svc.Login(testutils.TestPhones.Formatted, testutils.TestPasswords.Valid, "")
		assert.NoError(t, err)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		env := setupAuth(t)
		registerActive(t, env)

		_, _, err := env.svc.Login(testutils.TestPhones.Valid, "WrongPass1", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects unknown phone with the same error", func(t *testing.T) {
		env := setupAuth(t)

		_, _, err := env.svc.Login(testutils.TestPhones.Unknown, testutils.TestPasswords.Valid, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("refuses inactive account with correct credentials", func(t *testing.T) {
		env := setupAuth(t)
		env.allow(t, testutils.TestPhones.Valid)
		env.gateway.On("Available").Return(true)
		env.gateway.On("SendCode", mock.Anything, mock.Anything).Return(true, nil)

		_, err := env.svc.Register(registerInput(testutils.TestPhones.Valid))
		require.NoError(t, err)

		_, _, err = env.svc.Login(testutils.TestPhones.Valid, testutils.TestPasswords.Valid, "")
		assert.ErrorIs(t, err, ErrAccountNotActive)
	})
}

func TestRefresh(t *testing.T) {
	env := setupAuth(t)
	jwtService := jwtsvc.NewService(testutils.GetTestConfig(), nil)

	t.Run("rotates a refresh token", func(t *testing.T) {
		pair, err := jwtService.GeneratePair(42)
		require.NoError(t, err)

		rotated, err := env.svc.Refresh(pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, rotated.AccessToken)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		pair, err := jwtService.GeneratePair(42)
		require.NoError(t, err)

		_, err = env.svc.Refresh(pair.AccessToken)
		assert.ErrorIs(t, err, jwtsvc.ErrWrongTokenType)
	})
}
