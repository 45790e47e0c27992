// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

import (
	"strings"

	"workzone_backend/internal/feature/auth/usecase"
)

// RegisterRequest represents the request body for POST /api/auth/register.
// Field rules live on usecase.RegisterInput so every failure is reported at once.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	// MobileNumber is accepted as an alias of Phone.
	MobileNumber        string `json:"mobileNumber"`
	Role                string `json:"role"`
	IdentityCardNumber  string `json:"identityCardNumber"`
	Company             string `json:"company"`
	CompanyRegistration string `json:"companyRegistration"`
}

// ToInput converts the request to the usecase input. Phone wins over MobileNumber.
func (r RegisterRequest) ToInput() usecase.RegisterInput {
	phone := r.Phone
	if strings.TrimSpace(phone) == "" {
		phone = r.MobileNumber
	}
	return usecase.RegisterInput{
		Name:                r.Name,
		Email:               r.Email,
		Password:            r.Password,
		Phone:               phone,
		Role:                r.Role,
		IdentityCardNumber:  r.IdentityCardNumber,
		Company:             r.Company,
		CompanyRegistration: r.CompanyRegistration,
	}
}

// LoginRequest represents the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleRequest represents the request body for POST /api/auth/google.
type GoogleRequest struct {
	Credential string `json:"credential"`
}

// UpdateProfileRequest represents the request body for PUT /api/auth/update-profile.
// Role, password and role attributes are not accepted here.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	MobileNumber   *string `json:"mobileNumber"`
	ProfilePicture *string `json:"profilePicture"`
}

// ToUpdate converts the request to the usecase update.
func (r UpdateProfileRequest) ToUpdate() usecase.ProfileUpdate {
	phone := r.Phone
	if phone == nil {
		phone = r.MobileNumber
	}
	return usecase.ProfileUpdate{
		DisplayName:    r.Name,
		Email:          r.Email,
		Phone:          phone,
		ProfilePicture: r.ProfilePicture,
	}
}
