// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// Role is the fixed role an identity is created with.
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleCompany
}

// RoleAttributes is the role-conditional part of an identity.
// Exactly one implementation exists per Role.
type RoleAttributes interface {
	Role() Role
}

// StudentAttributes holds the fields only students carry.
type StudentAttributes struct {
	IdentityCardNumber string
}

// Role implements RoleAttributes.
func (StudentAttributes) Role() Role { return RoleStudent }

// CompanyAttributes holds the fields only companies carry.
type CompanyAttributes struct {
	CompanyName         string
	CompanyRegistration string
}

// Role implements RoleAttributes.
func (CompanyAttributes) Role() Role { return RoleCompany }

// Identity represents a registered user (student or company).
type Identity struct {
	// ID is an opaque identifier assigned at creation. It never changes.
	ID string

	DisplayName    string
	Email          string
	Phone          string
	ProfilePicture string

	// SecretHash is the bcrypt hash of the password. It is nil for accounts
	// created through federated login, and is only loaded when explicitly requested.
	SecretHash *string

	Role       Role
	Attributes RoleAttributes

	// FederatedID is the subject at the external identity provider, if linked.
	FederatedID *string

	Active              bool
	LastAuthenticatedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasSecret reports whether a local password is set.
func (i *Identity) HasSecret() bool {
	return i.SecretHash != nil && *i.SecretHash != ""
}

// IsFederated reports whether the identity is linked to an external provider.
func (i *Identity) IsFederated() bool {
	return i.FederatedID != nil && *i.FederatedID != ""
}

// Authenticatable reports whether any login path can succeed for this identity.
func (i *Identity) Authenticatable() bool {
	return i.HasSecret() || i.IsFederated()
}

// Student returns the student attributes, if the identity is a student.
func (i *Identity) Student() (StudentAttributes, bool) {
	s, ok := i.Attributes.(StudentAttributes)
	return s, ok
}

// Company returns the company attributes, if the identity is a company.
func (i *Identity) Company() (CompanyAttributes, bool) {
	c, ok := i.Attributes.(CompanyAttributes)
	return c, ok
}
