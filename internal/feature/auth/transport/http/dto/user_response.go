package dto

import (
	"time"

	"workzone_backend/internal/feature/auth/domain/entity"
)

// UserResponse is the public view of an identity. It never carries the password hash.
// Role fields are emitted only for the identity's own role.
type UserResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Phone          string     `json:"phone"`
	ProfilePicture string     `json:"profilePicture"`
	IsActive       bool       `json:"isActive"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`

	IdentityCardNumber  string `json:"identityCardNumber,omitempty"`
	Company             string `json:"company,omitempty"`
	CompanyRegistration string `json:"companyRegistration,omitempty"`
}

// AuthResponse is returned by register, login and federated login.
type AuthResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	IsNewUser *bool        `json:"isNewUser,omitempty"`
}

// UserEnvelope is returned by /me and /update-profile.
type UserEnvelope struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// NewUserResponse builds the public view of an identity.
func NewUserResponse(i *entity.Identity) UserResponse {
	u := UserResponse{
		ID:             i.ID,
		Name:           i.DisplayName,
		Email:          i.Email,
		Role:           string(i.Role),
		Phone:          i.Phone,
		ProfilePicture: i.ProfilePicture,
		IsActive:       i.Active,
		LastLogin:      i.LastAuthenticatedAt,
		CreatedAt:      i.CreatedAt,
	}
	switch a := i.Attributes.(type) {
	case entity.StudentAttributes:
		u.IdentityCardNumber = a.IdentityCardNumber
	case entity.CompanyAttributes:
		u.Company = a.CompanyName
		u.CompanyRegistration = a.CompanyRegistration
	}
	return u
}
