package handler

import (
	"time"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/usecase"
)

// AccountPayload is the outward view of an account. The password hash never leaves the service.
type AccountPayload struct {
	ID       int64       `json:"id"`
	Email    string      `json:"email"`
	Role     entity.Role `json:"role"`
	Name     string      `json:"name"`
	FullName string      `json:"fullName,omitempty"`
	Phone    string      `json:"phone,omitempty"`

	Bio        string `json:"bio,omitempty"`
	Skills     string `json:"skills,omitempty"`
	Experience string `json:"experience,omitempty"`
	Education  string `json:"education,omitempty"`
	ResumeURL  string `json:"resumeUrl,omitempty"`

	CompanyName        string `json:"companyName,omitempty"`
	CompanyDescription string `json:"companyDescription,omitempty"`
	CompanyWebsite     string `json:"companyWebsite,omitempty"`
	CompanyLocation    string `json:"companyLocation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthPayload is returned by login and registration.
type AuthPayload struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *AccountPayload `json:"user"`
}

// ValidatePayload answers the token check made by the web client.
type ValidatePayload struct {
	Valid bool        `json:"valid"`
	Email string      `json:"email,omitempty"`
	Role  entity.Role `json:"role,omitempty"`
	Name  string      `json:"name,omitempty"`
}

func newAccountPayload(account *entity.Account) *AccountPayload {
	if account == nil {
		return nil
	}

	payload := &AccountPayload{
		ID:        account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Name:      account.Name,
		Phone:     account.Phone,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}

	switch {
	case account.Applicant != nil:
		payload.FullName = account.Name
		payload.Bio = account.Applicant.Bio
		payload.Skills = account.Applicant.Skills
		payload.Experience = account.Applicant.Experience
		payload.Education = account.Applicant.Education
		payload.ResumeURL = account.Applicant.ResumeURL
	case account.Employer != nil:
		payload.CompanyName = account.Employer.CompanyName
		payload.CompanyDescription = account.Employer.CompanyDescription
		payload.CompanyWebsite = account.Employer.CompanyWebsite
		payload.CompanyLocation = account.Employer.CompanyLocation
	}

	return payload
}

func newAuthPayload(out *usecase.AuthOutput) *AuthPayload {
	return &AuthPayload{
		Token:     out.Token,
		ExpiresAt: out.ExpiresAt,
		User:      newAccountPayload(out.Account),
	}
}
