package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"15m", 15 * time.Minute},
		{"168h", 168 * time.Hour},
		{"", time.Hour},
		{"0d", time.Hour},
		{"-5m", time.Hour},
		{"soon", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in, time.Hour))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetForTest(t, "HTTP_ADDR", "JWT_SECRET", "JWT_EXPIRE", "BCRYPT_COST", "OTP_TTL", "REDIS_ADDR", "OTP_SWEEP_SCHEDULE")

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expire)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "@every 30m", cfg.OTPSweepSchedule)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("OTP_SWEEP_SCHEDULE", "")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expire)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.False(t, cfg.AutoMigrate)
	assert.Empty(t, cfg.OTPSweepSchedule)
	assert.False(t, cfg.UsesDefaultSecret())
}

// unsetForTest removes keys for the duration of the test and restores them after.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}
