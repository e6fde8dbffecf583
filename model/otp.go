package model

import "time"

type OTP struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Lookup-only reference, holds a User ID. Not a foreign key into a
	// single table since the owner may be deleted out from under it.
	OwnerID string `gorm:"index" json:"ownerId"`

	// 6 decimal digits, left-zero-padded
	Code string `gorm:"size:6;not null" json:"-"`

	// One of register-verify, login-verify, password-reset. At most one
	// unverified row per (owner, purpose) is ever meaningful.
	Purpose string `gorm:"size:32;index" json:"purpose"`

	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}
