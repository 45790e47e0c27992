package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestRole_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleCompany.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestIdentity_Authenticatable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity Identity
		want     bool
	}{
		{"local password", Identity{SecretHash: strPtr("$2a$10$hash")}, true},
		{"federated only", Identity{FederatedID: strPtr("google-sub")}, true},
		{"empty hash and empty federated id", Identity{SecretHash: strPtr(""), FederatedID: strPtr("")}, false},
		{"neither", Identity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.identity.Authenticatable())
		})
	}
}

func TestIdentity_RoleAttributes(t *testing.T) {
	t.Parallel()

	student := Identity{Role: RoleStudent, Attributes: StudentAttributes{IdentityCardNumber: "ID-1"}}
	s, ok := student.Student()
	assert.True(t, ok)
	assert.Equal(t, "ID-1", s.IdentityCardNumber)
	_, ok = student.Company()
	assert.False(t, ok)
	assert.Equal(t, RoleStudent, student.Attributes.Role())

	company := Identity{Role: RoleCompany, Attributes: CompanyAttributes{CompanyName: "Acme", CompanyRegistration: "REG-9"}}
	c, ok := company.Company()
	assert.True(t, ok)
	assert.Equal(t, "Acme", c.CompanyName)
	assert.Equal(t, RoleCompany, company.Attributes.Role())
}
