package sms

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Sender delivers one-time codes to a phone number.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the log. Used when no gateway is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendCode(_ context.Context, phone, code string) error {
	s.logger.Info("OTP issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

type gatewayError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GatewaySender posts messages to a Twilio-compatible REST endpoint
// (form-encoded To/From/Body, HTTP basic auth).
type GatewaySender struct {
	httpClient *resty.Client
	from       string
	logger     *zap.Logger
}

func NewGatewaySender(url, accountSID, authToken, from string, logger *zap.Logger) *GatewaySender {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(retryOnDialError).
		SetBasicAuth(accountSID, authToken).
		SetHeader("Accept", "application/json")

	return &GatewaySender{httpClient: client, from: from, logger: logger}
}

// retryOnDialError allows a retry only when the connection was never made.
// Any later failure may already have sent the message.
func retryOnDialError(_ *resty.Response, err error) bool {
	var op *net.OpError
	return errors.As(err, &op) && op.Op == "dial"
}

func (s *GatewaySender) SendCode(ctx context.Context, phone, code string) error {
	var apiErr gatewayError
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   phone,
			"From": s.from,
			"Body": fmt.Sprintf("Your Health Companion verification code is %s. It expires in 10 minutes.", code),
		}).
		SetError(&apiErr).
		Post("")
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	if resp.IsError() {
		s.logger.Warn("SMS gateway rejected message",
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("code", apiErr.Code),
			zap.String("msg", apiErr.Message),
		)
		return fmt.Errorf("sms gateway: status %d: %s", resp.StatusCode(), apiErr.Message)
	}
	return nil
}
