// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Captured on registration. A login from the same address skips the
	// OTP step, anything else counts as a new-device event.
	DeviceType string `gorm:"default:Unknown" json:"deviceType"`
	IPAddress  string `gorm:"default:unknown" json:"ipAddress"`

	CreatedAt time.Time `json:"createdAt"`

	OTPs  []OTP  `gorm:"foreignKey:OwnerID" json:"-"`
	Files []File `gorm:"foreignKey:UploaderID" json:"-"`
}
