package auth

import "errors"

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrPasswordPolicy        = errors.New("password does not meet requirements")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountNotActive      = errors.New("account is not activated")
	ErrAccountAlreadyActive  = errors.New("account is already activated")
	ErrAccountNotFound       = errors.New("no account found for this phone number")
	ErrPhoneNotAllowed       = errors.New("this phone number is not authorized to register")
	ErrPhoneTaken            = errors.New("a user with this phone number already exists")
	ErrPhoneNowTaken         = errors.New("this phone number has been taken by another account")
	ErrNoPendingCode         = errors.New("no pending verification code for this account")
	ErrCodeExpired           = errors.New("verification code has expired, request a new one")
	ErrCodeLocked            = errors.New("too many failed attempts, request a new code")
	ErrCodeIncorrect         = errors.New("incorrect verification code")
	ErrCodeInvalidOrExpired  = errors.New("invalid or expired verification link")
	ErrVerificationLocked    = errors.New("verification is locked, contact support")
	ErrResendCooldown        = errors.New("please wait before requesting another code")
	ErrSmsUnavailable        = errors.New("SMS service is currently unavailable")
	ErrSmsSendFailed         = errors.New("failed to send SMS message")
)
