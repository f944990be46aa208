package mapping

import (
	"github.com/sunucar/sunucar_backend/internal/core/domain"
	"github.com/sunucar/sunucar_backend/internal/models"
)

// ToModelUser converts a domain.User to its database model.
func ToModelUser(u domain.User) models.User {
	m := models.User{
		UserID:             u.UserID,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		VerificationStatus: string(u.Verification),
		Suspended:          u.Suspended,
		AuditFields:        toModelAudit(u.AuditFields),
	}
	if u.AuthProvider != "" {
		provider := u.AuthProvider
		m.AuthProvider = &provider
	}
	return m
}

// ToDomainUser converts a database model to a domain.User.
func ToDomainUser(m models.User) domain.User {
	u := domain.User{
		UserID:       m.UserID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		Verification: domain.VerificationStatus(m.VerificationStatus),
		Suspended:    m.Suspended,
		AuditFields:  toDomainAudit(m.AuditFields),
	}
	if m.AuthProvider != nil {
		u.AuthProvider = *m.AuthProvider
	}
	return u
}

// ToDomainUserSlice converts a slice of user models.
func ToDomainUserSlice(ms []models.User) []domain.User {
	users := make([]domain.User, len(ms))
	for i, m := range ms {
		users[i] = ToDomainUser(m)
	}
	return users
}
