package cron

import (
	"context"
	"time"

	"github.com/meinhoongagan/health-companion/store"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartCronJobs schedules the expired-OTP sweep. An empty schedule disables
// it and returns a nil scheduler. OTP validation checks expiry on its own,
// so the sweep only tidies stored state.
func StartCronJobs(schedule string, users store.UserStore, log *zap.Logger) (*cron.Cron, error) {
	if schedule == "" {
		log.Info("OTP sweep disabled")
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		sweepExpiredCodes(ctx, users, time.Now(), log)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info("cron scheduler started", zap.String("otp_sweep", schedule))
	return c, nil
}

func sweepExpiredCodes(ctx context.Context, users store.UserStore, now time.Time, log *zap.Logger) int64 {
	n, err := users.ClearExpiredCodes(ctx, now)
	if err != nil {
		log.Error("OTP sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		log.Info("cleared expired verification codes", zap.Int64("count", n))
	}
	return n
}
