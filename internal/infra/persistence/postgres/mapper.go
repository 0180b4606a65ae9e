package postgres

import (
	"strings"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/infra/persistence/model"
)

// emailKey is the ledger form of an email address.
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toApplicantDomain(m *model.ApplicantAccountModel) *entity.Account {
	return &entity.Account{
		ID:           m.ID,
		Role:         entity.RoleApplicant,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.FullName,
		Phone:        m.Phone,
		Applicant: &entity.ApplicantProfile{
			Bio:        m.Bio,
			Skills:     m.Skills,
			Experience: m.Experience,
			Education:  m.Education,
			ResumeURL:  m.ResumeURL,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromApplicantDomain(a *entity.Account) *model.ApplicantAccountModel {
	m := &model.ApplicantAccountModel{
		ID:           a.ID,
		FullName:     a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Phone:        a.Phone,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if p := a.Applicant; p != nil {
		m.Bio = p.Bio
		m.Skills = p.Skills
		m.Experience = p.Experience
		m.Education = p.Education
		m.ResumeURL = p.ResumeURL
	}

	return m
}

func toEmployerDomain(m *model.EmployerAccountModel) *entity.Account {
	return &entity.Account{
		ID:           m.ID,
		Role:         entity.RoleEmployer,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.ContactName,
		Phone:        m.Phone,
		Employer: &entity.EmployerProfile{
			CompanyName:        m.CompanyName,
			CompanyDescription: m.CompanyDescription,
			CompanyWebsite:     m.CompanyWebsite,
			CompanyLocation:    m.CompanyLocation,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromEmployerDomain(a *entity.Account) *model.EmployerAccountModel {
	m := &model.EmployerAccountModel{
		ID:           a.ID,
		ContactName:  a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Phone:        a.Phone,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if p := a.Employer; p != nil {
		m.CompanyName = p.CompanyName
		m.CompanyDescription = p.CompanyDescription
		m.CompanyWebsite = p.CompanyWebsite
		m.CompanyLocation = p.CompanyLocation
	}

	return m
}

func toResetTokenDomain(m *model.PasswordResetTokenModel) *entity.PasswordResetToken {
	return &entity.PasswordResetToken{
		ID:          m.ID,
		TokenHash:   m.TokenHash,
		ExpiresAt:   m.ExpiresAt,
		Used:        m.Used,
		Role:        entity.Role(m.Role),
		ApplicantID: m.ApplicantID,
		EmployerID:  m.EmployerID,
		CreatedAt:   m.CreatedAt,
	}
}

func fromResetTokenDomain(t *entity.PasswordResetToken) *model.PasswordResetTokenModel {
	return &model.PasswordResetTokenModel{
		ID:          t.ID,
		TokenHash:   t.TokenHash,
		ExpiresAt:   t.ExpiresAt,
		Used:        t.Used,
		Role:        t.Role.String(),
		ApplicantID: t.ApplicantID,
		EmployerID:  t.EmployerID,
		CreatedAt:   t.CreatedAt,
	}
}
