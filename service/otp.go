// Package service holds the stateful pieces the handlers orchestrate:
// the OTP ledger, the mail dispatcher and the background sweeps.
package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/DawrAli33285/sftpbackendnew/model"
	"github.com/DawrAli33285/sftpbackendnew/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OTP purposes. A user can hold at most one unverified code per purpose,
// issuing a new one supersedes the old.
const (
	PurposeRegister = "register-verify"
	PurposeLogin    = "login-verify"
	PurposeReset    = "password-reset"
)

const (
	VerifyTTL = 5 * time.Minute
	ResetTTL  = 10 * time.Minute
)

var (
	ErrOTPMissing = errors.New("no pending code for this account")
	ErrOTPExpired = errors.New("code has expired")
)

// OTPLedger persists one-time codes bound to a user and a purpose-specific
// expiry. Safe for concurrent use to the extent the underlying database is;
// concurrent issues for the same (owner, purpose) resolve last-writer-wins,
// which is fine because every write fully replaces the code and expiry.
type OTPLedger struct {
	DB *gorm.DB
}

func NewOTPLedger(db *gorm.DB) *OTPLedger {
	return &OTPLedger{DB: db}
}

// Issue invalidates any unverified codes for (ownerID, purpose) and creates
// a fresh one expiring after ttl.
func (l *OTPLedger) Issue(ownerID, purpose string, ttl time.Duration) (*model.OTP, error) {
	if err := l.Invalidate(ownerID, purpose); err != nil {
		return nil, err
	}

	code, err := security.GenerateOTPCode()
	if err != nil {
		return nil, err
	}

	rec := &model.OTP{
		OwnerID:   ownerID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := l.DB.Create(rec).Error; err != nil {
		return nil, err
	}

	return rec, nil
}

// Refresh replaces the code and expiry of the existing unverified record
// in place. It succeeds even if the old record had already expired so a
// resend never leaks whether the original was still live. Returns
// ErrOTPMissing when there is nothing to refresh.
func (l *OTPLedger) Refresh(ownerID, purpose string, ttl time.Duration) (*model.OTP, error) {
	var rec model.OTP

	err := l.DB.
		Where("owner_id = ? AND purpose = ? AND verified = ?", ownerID, purpose, false).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPMissing
		}
		return nil, err
	}

	code, err := security.GenerateOTPCode()
	if err != nil {
		return nil, err
	}

	rec.Code = code
	rec.ExpiresAt = time.Now().Add(ttl)

	if err := l.DB.Save(&rec).Error; err != nil {
		return nil, err
	}

	return &rec, nil
}

// FindUnverified returns the pending code for (ownerID, purpose). An
// expired record is deleted on the spot and reported as ErrOTPExpired, so
// callers never see a stale code even if the sweep hasn't run yet.
func (l *OTPLedger) FindUnverified(ownerID, purpose string) (*model.OTP, error) {
	var rec model.OTP

	err := l.DB.
		Where("owner_id = ? AND purpose = ? AND verified = ?", ownerID, purpose, false).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPMissing
		}
		return nil, err
	}

	if time.Now().After(rec.ExpiresAt) {
		if err := l.DB.Delete(&model.OTP{}, rec.ID).Error; err != nil {
			return nil, err
		}
		return nil, ErrOTPExpired
	}

	return &rec, nil
}

// Verify compares a candidate code against the record. Constant-time since
// this gates account access.
func (l *OTPLedger) Verify(rec *model.OTP, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(rec.Code), []byte(candidate)) == 1
}

// Consume marks the record verified and removes it, so a replayed code
// fails with ErrOTPMissing afterwards.
func (l *OTPLedger) Consume(rec *model.OTP) error {
	rec.Verified = true
	if err := l.DB.Save(rec).Error; err != nil {
		return err
	}

	return l.DB.Delete(&model.OTP{}, rec.ID).Error
}

// Invalidate deletes all unverified codes for (ownerID, purpose).
func (l *OTPLedger) Invalidate(ownerID, purpose string) error {
	return l.DB.
		Where("owner_id = ? AND purpose = ? AND verified = ?", ownerID, purpose, false).
		Delete(&model.OTP{}).
		Error
}

// InvalidateAll deletes every code for the owner regardless of purpose or
// verification state. Used after a completed password reset.
func (l *OTPLedger) InvalidateAll(ownerID string) error {
	return l.DB.
		Where("owner_id = ?", ownerID).
		Delete(&model.OTP{}).
		Error
}

// Sweep deletes every record past its expiry, verified or not.
func (l *OTPLedger) Sweep() error {
	r := l.DB.
		Where("expires_at < ?", time.Now()).
		Delete(&model.OTP{})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected > 0 {
		zap.L().Debug("Swept expired OTP records", zap.Int64("count", r.RowsAffected))
	}

	return nil
}
