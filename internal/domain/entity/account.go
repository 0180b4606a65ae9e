// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// Account is the unified view over the applicant and employer tables.
// Role is the kind tag: exactly one of Applicant or Employer is non-nil and it matches Role.
type Account struct {
	ID           int64             // Identifier within the table of its kind. Not unique across kinds.
	Role         Role              // Which table backs this account.
	Email        string            // Case preserved; lookups compare case-insensitively.
	PasswordHash string            // bcrypt digest. Never leaves the service layer.
	Name         string            // Applicant full name or employer contact name.
	Phone        string            // Optional contact phone.
	Applicant    *ApplicantProfile // Set for RoleApplicant.
	Employer     *EmployerProfile  // Set for RoleEmployer.
	CreatedAt    time.Time         // Set once on creation.
	UpdatedAt    time.Time         // Refreshed on every mutation.
}

// ApplicantProfile holds the job seeker's résumé data.
type ApplicantProfile struct {
	Bio        string
	Skills     string
	Experience string
	Education  string
	ResumeURL  string
}

// EmployerProfile holds the company data shown on job postings.
type EmployerProfile struct {
	CompanyName        string
	CompanyDescription string
	CompanyWebsite     string
	CompanyLocation    string
}

// NewApplicant builds an applicant account ready to be persisted.
func NewApplicant(name, email, phone string) *Account {
	return &Account{
		Role:      RoleApplicant,
		Email:     email,
		Name:      name,
		Phone:     phone,
		Applicant: &ApplicantProfile{},
	}
}

// NewEmployer builds an employer account ready to be persisted.
func NewEmployer(contactName, email, phone, companyName, companyLocation string) *Account {
	return &Account{
		Role:  RoleEmployer,
		Email: email,
		Name:  contactName,
		Phone: phone,
		Employer: &EmployerProfile{
			CompanyName:     companyName,
			CompanyLocation: companyLocation,
		},
	}
}

// Principal returns the request-scoped identity of the account.
func (a *Account) Principal() Principal {
	return Principal{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      a.Role,
	}
}

// DisplayName returns the name used when addressing the account holder.
func (a *Account) DisplayName() string {
	return a.Name
}
