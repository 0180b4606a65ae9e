package model

import "time"

// PasswordResetTokenModel mirrors the 'password_reset_tokens' table.
type PasswordResetTokenModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	TokenHash   string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt   time.Time `gorm:"not null"`
	Used        bool      `gorm:"not null;default:false"`
	Role        string    `gorm:"type:varchar(20);not null"`
	ApplicantID *int64
	EmployerID  *int64
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
}

// TableName explicitly sets the table name for GORM.
func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}
