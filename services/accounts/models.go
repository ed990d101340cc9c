package accounts

import (
	"time"
)

type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name         string `json:"name" gorm:"size:255"`
	College      string `json:"college" gorm:"size:255"`
	Semester     int    `json:"semester"`
	PasswordHash string `json:"-" gorm:"column:password_hash;size:255;not null"`

	// ActiveDeviceToken is the token of the one device allowed to hold a
	// session. NULL means no device holds authority.
	ActiveDeviceToken *string `json:"-" gorm:"column:active_device_token;size:64"`
	ActiveDeviceLabel string  `json:"active_device_label" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type PasswordResetToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:36;not null;index"`
	Token     string `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// Models lists the tables owned by this package for auto-migration.
func Models() []any {
	return []any{&User{}, &PasswordResetToken{}}
}
