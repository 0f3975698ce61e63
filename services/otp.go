package services

import (
	"context"
	"time"

	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/sms"
	"github.com/meinhoongagan/health-companion/utils"
	"go.uber.org/zap"
)

// OTPIssuer generates phone verification codes and hands them to an SMS
// sender. Delivery is best-effort: a failed send is logged and the caller
// carries on.
type OTPIssuer struct {
	Sender   sms.Sender
	TTL      time.Duration
	Now      func() time.Time
	Generate func() (string, error)
	Logger   *zap.Logger
}

func NewOTPIssuer(sender sms.Sender, ttl time.Duration, logger *zap.Logger) *OTPIssuer {
	return &OTPIssuer{
		Sender:   sender,
		TTL:      ttl,
		Now:      time.Now,
		Generate: utils.GenerateOTP,
		Logger:   logger,
	}
}

// Assign replaces any outstanding code on u. The caller persists u.
func (o *OTPIssuer) Assign(u *models.User) (string, error) {
	code, err := o.Generate()
	if err != nil {
		return "", err
	}
	u.SetVerificationCode(code, o.Now().Add(o.TTL))
	return code, nil
}

func (o *OTPIssuer) Valid(u *models.User, code string) bool {
	return u.IsVerificationCodeValid(code, o.Now())
}

func (o *OTPIssuer) Deliver(ctx context.Context, phone, code string) {
	if err := o.Sender.SendCode(ctx, phone, code); err != nil {
		o.Logger.Warn("OTP delivery failed", zap.String("phone", phone), zap.Error(err))
	}
}
