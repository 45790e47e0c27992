package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"workzone_backend/internal/feature/auth/domain/entity"
	"workzone_backend/internal/feature/auth/usecase"
	"workzone_backend/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.Migrate(context.Background(), gdb, &IdentityModel{}), "failed to migrate table")
	return gdb
}

func hashPtr(s string) *string { return &s }

func newStudent(id, email string) *entity.Identity {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &entity.Identity{
		ID:          id,
		DisplayName: "Student " + id,
		Email:       email,
		Phone:       "090-1111-2222",
		SecretHash:  hashPtr("$2a$10$hash-" + id),
		Role:        entity.RoleStudent,
		Attributes:  entity.StudentAttributes{IdentityCardNumber: "S-" + id},
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestNewIdentityGorm(t *testing.T) {
	gdb := setupTestDB(t)

	repo := NewIdentityGorm(gdb, time.Second)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
	assert.Equal(t, time.Second, repo.timeout)
}

func TestIdentityGorm_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)

		err := repo.Create(ctx, newStudent("u1", "u1@example.com"))
		assert.NoError(t, err, "failed to create identity")
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		require.NoError(t, repo.Create(ctx, newStudent("u1", "dup@example.com")))

		err := repo.Create(ctx, newStudent("u2", "dup@example.com"))
		assert.ErrorIs(t, err, usecase.ErrDuplicateIdentity)
	})

	t.Run("duplicate federated id", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		a := newStudent("u1", "a@example.com")
		a.FederatedID = hashPtr("sub-1")
		b := newStudent("u2", "b@example.com")
		b.FederatedID = hashPtr("sub-1")
		require.NoError(t, repo.Create(ctx, a))

		assert.ErrorIs(t, repo.Create(ctx, b), usecase.ErrDuplicateIdentity)
	})

	t.Run("several identities without federated id", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		require.NoError(t, repo.Create(ctx, newStudent("u1", "a@example.com")))
		assert.NoError(t, repo.Create(ctx, newStudent("u2", "b@example.com")))
	})

	t.Run("nil identity", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		assert.Error(t, repo.Create(ctx, nil))
	})
}

func TestIdentityGorm_Find(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentityGorm(setupTestDB(t), time.Second)

	student := newStudent("u1", "student@example.com")
	company := &entity.Identity{
		ID:          "c1",
		DisplayName: "Acme",
		Email:       "hr@acme.example",
		Phone:       "03-0000-0000",
		SecretHash:  hashPtr("$2a$10$company"),
		Role:        entity.RoleCompany,
		Attributes:  entity.CompanyAttributes{CompanyName: "Acme", CompanyRegistration: "REG-9"},
		FederatedID: hashPtr("google-c1"),
		Active:      false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, student))
	require.NoError(t, repo.Create(ctx, company))

	t.Run("by email with secret", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "student@example.com", true)
		require.NoError(t, err)
		require.NotNil(t, found.SecretHash)
		assert.Equal(t, *student.SecretHash, *found.SecretHash)
		attrs, ok := found.Student()
		require.True(t, ok)
		assert.Equal(t, "S-u1", attrs.IdentityCardNumber)
		assert.True(t, found.Active)
	})

	t.Run("by email without secret", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "student@example.com", false)
		require.NoError(t, err)
		assert.Nil(t, found.SecretHash)
	})

	t.Run("by id never loads the secret", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Nil(t, found.SecretHash)
		assert.Equal(t, entity.RoleCompany, found.Role)
		attrs, ok := found.Company()
		require.True(t, ok)
		assert.Equal(t, "Acme", attrs.CompanyName)
		assert.Equal(t, "REG-9", attrs.CompanyRegistration)
		assert.False(t, found.Active)
	})

	t.Run("by federated id", func(t *testing.T) {
		found, err := repo.FindByFederatedID(ctx, "google-c1")
		require.NoError(t, err)
		assert.Equal(t, "c1", found.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "missing@example.com", true)
		assert.ErrorIs(t, err, usecase.ErrIdentityNotFound)
		_, err = repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, usecase.ErrIdentityNotFound)
		_, err = repo.FindByFederatedID(ctx, "missing")
		assert.ErrorIs(t, err, usecase.ErrIdentityNotFound)
	})
}

func TestIdentityGorm_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only given columns", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		require.NoError(t, repo.Create(ctx, newStudent("u1", "u1@example.com")))

		loginAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		inactive := false
		err := repo.Update(ctx, "u1", usecase.IdentityUpdate{
			DisplayName:         hashPtr("Renamed"),
			Active:              &inactive,
			LastAuthenticatedAt: &loginAt,
		})
		require.NoError(t, err)

		found, err := repo.FindByEmail(ctx, "u1@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", found.DisplayName)
		assert.False(t, found.Active)
		require.NotNil(t, found.LastAuthenticatedAt)
		assert.True(t, loginAt.Equal(*found.LastAuthenticatedAt))
		assert.Equal(t, "090-1111-2222", found.Phone)
		assert.NotNil(t, found.SecretHash)
	})

	t.Run("email taken by another identity", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		require.NoError(t, repo.Create(ctx, newStudent("u1", "u1@example.com")))
		require.NoError(t, repo.Create(ctx, newStudent("u2", "u2@example.com")))

		err := repo.Update(ctx, "u1", usecase.IdentityUpdate{Email: hashPtr("u2@example.com")})
		assert.ErrorIs(t, err, usecase.ErrDuplicateIdentity)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		err := repo.Update(ctx, "missing", usecase.IdentityUpdate{Phone: hashPtr("1")})
		assert.ErrorIs(t, err, usecase.ErrIdentityNotFound)
	})

	t.Run("nothing to update", func(t *testing.T) {
		repo := NewIdentityGorm(setupTestDB(t), time.Second)
		assert.NoError(t, repo.Update(ctx, "missing", usecase.IdentityUpdate{}))
	})
}

func TestIdentityGorm_WorksWithCredentialStore(t *testing.T) {
	ctx := context.Background()
	store := usecase.NewCredentialStore(NewIdentityGorm(setupTestDB(t), time.Second))

	created, err := store.CreateIdentity(ctx, usecase.NewIdentity{
		DisplayName: "Aiko",
		Email:       "Aiko@Example.com",
		Phone:       "090",
		Password:    "secret1",
		Attributes:  entity.StudentAttributes{IdentityCardNumber: "S-1"},
	})
	require.NoError(t, err)

	found, err := store.FindByEmail(ctx, "AIKO@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, store.VerifySecret(found, "secret1"))

	_, err = store.CreateIdentity(ctx, usecase.NewIdentity{
		DisplayName: "Other",
		Email:       "aiko@example.com",
		Password:    "secret2",
		Attributes:  entity.StudentAttributes{IdentityCardNumber: "S-2"},
	})
	assert.ErrorIs(t, err, usecase.ErrDuplicateIdentity)
}
