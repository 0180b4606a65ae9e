// Package model holds the GORM mappings of the persisted tables. The schema
// itself is owned by the goose migrations.
package model

import "time"

// ApplicantAccountModel mirrors the 'applicant_accounts' table.
type ApplicantAccountModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	FullName     string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Phone        string    `gorm:"type:varchar(50)"`
	Bio          string    `gorm:"type:varchar(2000)"`
	Skills       string    `gorm:"type:text"`
	Experience   string    `gorm:"type:text"`
	Education    string    `gorm:"type:text"`
	ResumeURL    string    `gorm:"column:resume_url;type:varchar(1024)"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

// TableName explicitly sets the table name for GORM.
func (ApplicantAccountModel) TableName() string {
	return "applicant_accounts"
}

// EmployerAccountModel mirrors the 'employer_accounts' table.
type EmployerAccountModel struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement"`
	ContactName        string    `gorm:"type:varchar(255);not null"`
	Email              string    `gorm:"type:varchar(255);not null"`
	PasswordHash       string    `gorm:"type:varchar(255);not null"`
	Phone              string    `gorm:"type:varchar(50)"`
	CompanyName        string    `gorm:"type:varchar(255);not null"`
	CompanyDescription string    `gorm:"type:text"`
	CompanyWebsite     string    `gorm:"type:varchar(1024)"`
	CompanyLocation    string    `gorm:"type:varchar(255)"`
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false"`
}

// TableName explicitly sets the table name for GORM.
func (EmployerAccountModel) TableName() string {
	return "employer_accounts"
}

// AccountEmailModel mirrors the 'account_emails' ledger that keeps emails unique across both account tables.
type AccountEmailModel struct {
	EmailKey  string    `gorm:"primaryKey;type:varchar(255)"` // lower-cased email
	Role      string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

// TableName explicitly sets the table name for GORM.
func (AccountEmailModel) TableName() string {
	return "account_emails"
}
