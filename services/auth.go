package services

import (
	"context"
	"errors"
	"strings"

	"github.com/meinhoongagan/health-companion/auth"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/store"
	"go.uber.org/zap"
)

// Hasher is a password hasher that can also spend the cost of a comparison
// without a stored hash.
type Hasher interface {
	auth.PasswordHasher
	Burn(password string)
}

type RegisterInput struct {
	Name     string `json:"name" validate:"min=2,max=50"`
	Phone    string `json:"phone" validate:"phone"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=6"`
}

func (RegisterInput) FieldMessages() map[string]string {
	return map[string]string{
		"name":     "Name must be 2-50 characters",
		"phone":    "Invalid phone number",
		"email":    "Invalid email address",
		"password": "Password must be at least 6 characters",
	}
}

func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
}

type VerifyOTPInput struct {
	Phone string `json:"phone" validate:"phone"`
	OTP   string `json:"otp" validate:"len=6"`
}

func (VerifyOTPInput) FieldMessages() map[string]string {
	return map[string]string{
		"phone": "Invalid phone number",
		"otp":   "OTP must be 6 digits",
	}
}

func (in *VerifyOTPInput) Normalize() {
	in.Phone = strings.TrimSpace(in.Phone)
	in.OTP = strings.TrimSpace(in.OTP)
}

type LoginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (LoginInput) FieldMessages() map[string]string {
	return map[string]string{
		"identifier": "Phone or email is required",
		"password":   "Password is required",
	}
}

func (in *LoginInput) Normalize() {
	in.Identifier = strings.TrimSpace(in.Identifier)
}

type ResendOTPInput struct {
	Phone string `json:"phone" validate:"phone"`
}

func (ResendOTPInput) FieldMessages() map[string]string {
	return map[string]string{"phone": "Invalid phone number"}
}

func (in *ResendOTPInput) Normalize() {
	in.Phone = strings.TrimSpace(in.Phone)
}

type AuthService struct {
	users    store.UserStore
	hasher   Hasher
	tokens   *auth.TokenService
	denylist auth.Denylist
	otp      *OTPIssuer
	logger   *zap.Logger
}

func NewAuthService(users store.UserStore, hasher Hasher, tokens *auth.TokenService, denylist auth.Denylist, otp *OTPIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
		otp:      otp,
		logger:   logger,
	}
}

// Register creates an unverified account and sends its first OTP.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)

	_, err := s.users.FindByEmailOrPhone(ctx, email, phone)
	switch {
	case err == nil:
		return nil, ErrDuplicateIdentity
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	hash, err := s.hasher.HashPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}
	u := models.NewUser(strings.TrimSpace(in.Name), email, phone, hash)
	code, err := s.otp.Assign(u)
	if err != nil {
		return nil, err
	}
	// A concurrent registration can still win between the check and here.
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	s.otp.Deliver(ctx, phone, code)
	s.logger.Info("user registered", zap.Uint("user_id", u.ID))
	return u, nil
}

// VerifyOTP consumes the outstanding code and returns a session token.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (string, *models.User, error) {
	u, err := s.users.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, err
	}
	if !s.otp.Valid(u, code) {
		return "", nil, ErrInvalidOTP
	}
	// The clear is conditional on the code, so only one caller consumes it.
	if err := s.users.ConsumeVerificationCode(ctx, u.ID, code, s.otp.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidOTP
		}
		return "", nil, err
	}
	u.IsVerified = true
	u.ClearVerificationCode()

	token, _, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Login accepts an email or phone number. The verification check happens
// only after the password matched.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *models.User, error) {
	u, err := s.users.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.Burn(password)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	ok, err := s.hasher.VerifyPassword(ctx, password, u.Password)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return "", nil, &VerificationRequiredError{UserID: u.ID}
	}

	token, _, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// ResendOTP issues a fresh code, invalidating the previous one.
func (s *AuthService) ResendOTP(ctx context.Context, phone string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	code, err := s.otp.Assign(u)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u, store.UserVerification); err != nil {
		return nil, err
	}
	s.otp.Deliver(ctx, phone, code)
	return u, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Refresh issues a new token for the same identity. The old token stays
// valid until it expires or is logged out.
func (s *AuthService) Refresh(ctx context.Context, userID uint) (string, error) {
	if _, err := s.Me(ctx, userID); err != nil {
		return "", err
	}
	token, _, err := s.tokens.Issue(userID)
	return token, err
}

// Logout revokes the presented token for the rest of its lifetime when a
// denylist is configured. Without one the client simply drops the token.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
