package services

import (
	"errors"

	"github.com/meinhoongagan/health-companion/utils"
)

var (
	ErrDuplicateIdentity    = errors.New("user already exists with this email or phone number")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrVerificationRequired = errors.New("phone number not verified")
	ErrInvalidOTP           = errors.New("invalid or expired OTP")
	ErrUserNotFound         = errors.New("user not found")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizContention       = errors.New("quiz is being updated concurrently")
	ErrContactNotFound      = errors.New("message not found")
	ErrAssigneeNotFound     = errors.New("assignee not found")
	ErrIncorrectPassword    = errors.New("password is incorrect")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrUploadDisabled       = utils.ErrUploadDisabled
)

// VerificationRequiredError is returned by Login for a correct password on
// an account whose phone number is not verified yet.
type VerificationRequiredError struct {
	UserID uint
}

func (e *VerificationRequiredError) Error() string {
	return ErrVerificationRequired.Error()
}

func (e *VerificationRequiredError) Unwrap() error {
	return ErrVerificationRequired
}
