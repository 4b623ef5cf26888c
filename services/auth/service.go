package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SteveElouga/waterbill-api/config"
	jwtsvc "github.com/SteveElouga/waterbill-api/services/jwt"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/sms"
	"github.com/SteveElouga/waterbill-api/services/users"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service orchestrates the phone-based authentication flows on top of the
// verification token engine, the SMS gateway and the user store.
type Service struct {
	config       *config.Config
	db           *gorm.DB
	users        *users.Service
	allowlist    *users.AllowlistService
	verification *verification.Service
	gateway      sms.Gateway
	jwt          *jwtsvc.Service
	logger       *logging.Service
}

func NewService(
	cfg *config.Config,
	db *gorm.DB,
	usersService *users.Service,
	allowlist *users.AllowlistService,
	verificationService *verification.Service,
	gateway sms.Gateway,
	jwtService *jwtsvc.Service,
	logger *logging.Service,
) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config:       cfg,
		db:           db,
		users:        usersService,
		allowlist:    allowlist,
		verification: verificationService,
		gateway:      gateway,
		jwt:          jwtService,
		logger:       logger,
	}
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordPolicy, s.config.Auth.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	var missing []string

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if s.config.Auth.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if s.config.Auth.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if s.config.Auth.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if s.config.Auth.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: must contain at least %s", ErrPasswordPolicy, strings.Join(missing, ", "))
	}

	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}

	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

type RegisterInput struct {
	Phone         string
	Password      string
	FirstName     string
	LastName      string
	Email         string
	Address       string
	ApartmentName string
}

// Register creates an inactive account and dispatches its activation code in
// a single transaction. The SMS goes out before the activation row is
// written, and any failure past that point rolls everything back, so a
// registration either leaves a complete pending account behind or nothing
// at all.
func (s *Service) Register(input RegisterInput) (*users.User, error) {
	passwordHash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	if !s.allowlist.IsPhoneAuthorized(input.Phone) {
		s.logger.Warn("registration rejected: phone not on allowlist",
			zap.String("phone", input.Phone))
		return nil, ErrPhoneNotAllowed
	}

	var user *users.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.users.CreateTx(tx, users.CreateUserInput{
			Phone:         input.Phone,
			FirstName:     input.FirstName,
			LastName:      input.LastName,
			Email:         input.Email,
			Address:       input.Address,
			ApartmentName: input.ApartmentName,
			PasswordHash:  passwordHash,
		})
		if err != nil {
			return err
		}

		if !s.gateway.Available() {
			return ErrSmsUnavailable
		}

		code, err := verification.GenerateCode()
		if err != nil {
			return err
		}

		sent, err := s.gateway.SendCode(created.Phone, code)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSmsSendFailed, err)
		}
		if !sent {
			return ErrSmsSendFailed
		}

		if _, err := s.verification.CreateActivationTokenTx(tx, created.ID, code); err != nil {
			return err
		}

		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration completed, activation pending",
		zap.Uint("user_id", user.ID),
		zap.String("phone", user.Phone))
	return user, nil
}

// Login authenticates by phone and password and issues a token pair.
// Inactive accounts are refused after the password check so the error does
// not leak whether the credentials were right.
func (s *Service) Login(phone, password, userAgentHeader string) (*users.User, *jwtsvc.TokenPair, error) {
	user, err := s.users.FindByPhone(phone)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(user.Password, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, nil, ErrAccountNotActive
	}

	if err := s.users.RecordLogin(user); err != nil {
		s.logger.Error("failed to record login time", zap.Error(err), zap.Uint("user_id", user.ID))
	}

	pair, err := s.jwt.GeneratePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	ua := useragent.Parse(userAgentHeader)
	s.logger.Info("user logged in",
		zap.Uint("user_id", user.ID),
		zap.String("device", ua.Device),
		zap.String("os", ua.OS),
		zap.String("browser", ua.Name),
		zap.Bool("mobile", ua.Mobile))

	return user, pair, nil
}

// Refresh rotates a refresh token into a new pair.
func (s *Service) Refresh(refreshToken string) (*jwtsvc.TokenPair, error) {
	return s.jwt.RefreshPair(refreshToken)
}
