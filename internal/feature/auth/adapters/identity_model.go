package adapters

import (
	"fmt"
	"time"

	"workzone_backend/internal/feature/auth/domain/entity"
)

// IdentityModel is the GORM model for the identities table.
// Role-conditional columns are nullable and only populated for their role.
type IdentityModel struct {
	ID                  string     `gorm:"primaryKey;size:36"`
	Name                string     `gorm:"size:50;not null"`
	Email               string     `gorm:"uniqueIndex;size:255;not null"`
	Password            *string    `gorm:"size:255"`
	Phone               string     `gorm:"size:32;not null"`
	Role                string     `gorm:"size:16;index;not null"`
	IdentityCardNumber  *string    `gorm:"size:64"`
	Company             *string    `gorm:"size:255"`
	CompanyRegistration *string    `gorm:"size:64"`
	ProfilePicture      string     `gorm:"size:1024;not null"`
	FederatedID         *string    `gorm:"uniqueIndex;size:255"`
	IsActive            bool       `gorm:"not null"`
	LastLogin           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName returns the table name for GORM.
func (IdentityModel) TableName() string {
	return "identities"
}

// ToEntity converts the GORM model to a domain entity.
func (m *IdentityModel) ToEntity() (*entity.Identity, error) {
	identity := &entity.Identity{
		ID:                  m.ID,
		DisplayName:         m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		ProfilePicture:      m.ProfilePicture,
		SecretHash:          m.Password,
		Role:                entity.Role(m.Role),
		FederatedID:         m.FederatedID,
		Active:              m.IsActive,
		LastAuthenticatedAt: m.LastLogin,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	switch identity.Role {
	case entity.RoleStudent:
		identity.Attributes = entity.StudentAttributes{IdentityCardNumber: deref(m.IdentityCardNumber)}
	case entity.RoleCompany:
		identity.Attributes = entity.CompanyAttributes{
			CompanyName:         deref(m.Company),
			CompanyRegistration: deref(m.CompanyRegistration),
		}
	default:
		return nil, fmt.Errorf("identity %s has unknown role %q", m.ID, m.Role)
	}
	return identity, nil
}

// IdentityModelFromEntity converts a domain entity to a GORM model.
func IdentityModelFromEntity(i *entity.Identity) *IdentityModel {
	m := &IdentityModel{
		ID:             i.ID,
		Name:           i.DisplayName,
		Email:          i.Email,
		Password:       i.SecretHash,
		Phone:          i.Phone,
		Role:           string(i.Role),
		ProfilePicture: i.ProfilePicture,
		FederatedID:    i.FederatedID,
		IsActive:       i.Active,
		LastLogin:      i.LastAuthenticatedAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
	switch a := i.Attributes.(type) {
	case entity.StudentAttributes:
		m.IdentityCardNumber = nonEmpty(a.IdentityCardNumber)
	case entity.CompanyAttributes:
		m.Company = nonEmpty(a.CompanyName)
		m.CompanyRegistration = nonEmpty(a.CompanyRegistration)
	}
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
