package model

import "time"

type File struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`

	// The file owns its storage object. Deleting a file must remove the
	// object first and the row second, the row delete is the commit point.
	StorageKey string `gorm:"not null" json:"storageKey"`

	MimeType string `json:"fileType"`
	Size     int64  `json:"size"`

	// Who uploaded, could be a User or Admin, so no strict foreign key.
	// The role tells which table to resolve the display identity against.
	UploaderID   string `gorm:"index" json:"uploadedBy"`
	UploaderRole string `gorm:"size:8;default:user" json:"uploadedByRole"`

	// Set when the file was sent to a specific user
	ReceiverID *string `gorm:"index" json:"receiver,omitempty"`

	// Flipped when a download passcode is mailed out for this file
	Paid bool `gorm:"default:false" json:"paid"`

	CreatedAt time.Time `json:"createdAt"`
}
