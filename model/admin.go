package model

import "time"

// Admin is deliberately a separate table from User. The two are never
// unified; every issued token carries a kind claim telling them apart.
type Admin struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
