package auth

import (
	"testing"
	"time"

	"github.com/SteveElouga/waterbill-api/services/phone"
	"github.com/SteveElouga/waterbill-api/services/users"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"github.com/SteveElouga/waterbill-api/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// requestPhoneChange runs the request leg, capturing the code sent to the
// new number.
func requestPhoneChange(t *testing.T, env *testEnv, userID uint, newPhone string) (string, string) {
	t.Helper()

	var code string
	env.gateway.On("Available").Return(true)
	env.gateway.On("SendVerification", newPhone, mock.AnythingOfType("string"),
		verification.PurposePhoneChange, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { code = args.String(1) }).
		Return(true, nil)

	tokenID, err := env.svc.RequestPhoneChange(userID, newPhone)
	require.NoError(t, err)
	return tokenID, code
}

func TestRequestPhoneChange(t *testing.T) {
	t.Run("sends the code to the new number", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)

		tokenID, code := requestPhoneChange(t, env, user.ID, testutils.TestPhones.Second)
		assert.NotEmpty(t, tokenID)
		assert.Len(t, code, 6)

		got, err := env.users.FindByPhone(testutils.TestPhones.Valid)
		require.NoError(t, err)
		assert.Equal(t, testutils.TestPhones.Valid, got.Phone, "phone must not change before confirmation")
	})

	t.Run("rejects a number already in use", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)
		setupActiveUser(t, env, testutils.TestPhones.Second)

		_, err := env.svc.RequestPhoneChange(user.ID, testutils.TestPhones.Second)
		assert.ErrorIs(t, err, ErrPhoneTaken)
	})

	t.Run("rejects an invalid number", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)

		_, err := env.svc.RequestPhoneChange(user.ID, testutils.TestPhones.TooShort)
		assert.ErrorIs(t, err, phone.ErrInvalidPhone)
	})
}

func TestConfirmPhoneChange(t *testing.T) {
	t.Run("moves the account and notifies both numbers", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)
		tokenID, code := requestPhoneChange(t, env, user.ID, testutils.TestPhones.Second)

		details := "New number: " + testutils.TestPhones.Second
		env.gateway.On("SendConfirmation", testutils.TestPhones.Valid, verification.PurposePhoneChange, details).Return(true, nil)
		env.gateway.On("SendConfirmation", testutils.TestPhones.Second, verification.PurposePhoneChange, details).Return(true, nil)

		require.NoError(t, env.svc.ConfirmPhoneChange(tokenID, code))

		got, err := env.users.FindByPhone(testutils.TestPhones.Second)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = env.users.FindByPhone(testutils.TestPhones.Valid)
		assert.ErrorIs(t, err, users.ErrUserNotFound)

		env.gateway.AssertExpectations(t)
	})

	t.Run("number grabbed during the code window", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)
		tokenID, code := requestPhoneChange(t, env, user.ID, testutils.TestPhones.Second)

		// Someone else claims the number between request and confirm.
		setupActiveUser(t, env, testutils.TestPhones.Second)

		err := env.svc.ConfirmPhoneChange(tokenID, code)
		assert.ErrorIs(t, err, ErrPhoneNowTaken)

		got, err := env.users.FindByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, testutils.TestPhones.Valid, got.Phone, "losing the race must not mutate the account")
	})

	t.Run("token is one shot", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)
		tokenID, code := requestPhoneChange(t, env, user.ID, testutils.TestPhones.Second)
		env.gateway.On("SendConfirmation", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

		require.NoError(t, env.svc.ConfirmPhoneChange(tokenID, code))

		err := env.svc.ConfirmPhoneChange(tokenID, code)
		assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
	})

	t.Run("wrong code gets the generic error", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)
		tokenID, _ := requestPhoneChange(t, env, user.ID, testutils.TestPhones.Second)

		err := env.svc.ConfirmPhoneChange(tokenID, "000000")
		assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
	})
}

func TestResendCode(t *testing.T) {
	t.Run("resend for a phone change token targets the new number", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)
		tokenID, _ := requestPhoneChange(t, env, user.ID, testutils.TestPhones.Second)

		require.NoError(t, env.db.Model(&verification.Token{}).
			Where("token = ?", tokenID).
			Update("last_sent_at", time.Now().Add(-2*time.Minute)).Error)

		env.gateway.On("SendCode", testutils.TestPhones.Second, mock.AnythingOfType("string")).Return(true, nil)

		require.NoError(t, env.svc.ResendCode(tokenID, verification.PurposePhoneChange))
		env.gateway.AssertCalled(t, "SendCode", testutils.TestPhones.Second, mock.AnythingOfType("string"))
	})

	t.Run("cooldown applies", func(t *testing.T) {
		env := setupAuth(t)
		user := setupActiveUser(t, env, testutils.TestPhones.Valid)
		tokenID, _ := requestPhoneChange(t, env, user.ID, testutils.TestPhones.Second)

		err := env.svc.ResendCode(tokenID, verification.PurposePhoneChange)
		assert.ErrorIs(t, err, ErrResendCooldown)
	})
}
