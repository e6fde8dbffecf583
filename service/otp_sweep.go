package service

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartOTPSweep schedules a periodic deletion of expired OTP records. The
// ledger already lazy-deletes on read, the sweep just keeps the table from
// accumulating rows nobody will ever look up again.
func StartOTPSweep(l *OTPLedger) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("@every 10m", func() {
		if err := l.Sweep(); err != nil {
			zap.L().Error("OTP sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Error("Failed to schedule OTP sweep", zap.Error(err))
		return c
	}

	c.Start()
	zap.L().Debug("OTP sweep attached")

	return c
}
