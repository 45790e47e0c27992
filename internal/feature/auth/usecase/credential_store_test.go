package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"workzone_backend/internal/feature/auth/domain/entity"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestCredentialStore_CreateIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and normalizes the email", func(t *testing.T) {
		repo := newMockIdentityRepository()
		store := newTestStore(repo, fixedNow)

		identity, err := store.CreateIdentity(ctx, NewIdentity{
			DisplayName: "  Aiko Tanaka ",
			Email:       "  Aiko@Example.COM ",
			Phone:       "090-0000-0000",
			Password:    "secret1",
			Attributes:  entity.StudentAttributes{IdentityCardNumber: "S-123"},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, identity.ID)
		assert.Equal(t, "Aiko Tanaka", identity.DisplayName)
		assert.Equal(t, "aiko@example.com", identity.Email)
		assert.Equal(t, entity.RoleStudent, identity.Role)
		assert.True(t, identity.Active)
		assert.Equal(t, fixedNow, identity.CreatedAt)
		require.NotNil(t, identity.SecretHash)
		assert.NotEqual(t, "secret1", *identity.SecretHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*identity.SecretHash), []byte("secret1")))
		assert.Nil(t, identity.FederatedID)
	})

	t.Run("federated sign-up needs no password or attributes", func(t *testing.T) {
		repo := newMockIdentityRepository()
		store := newTestStore(repo, fixedNow)

		identity, err := store.CreateIdentity(ctx, NewIdentity{
			DisplayName: "Ken",
			Email:       "ken@example.com",
			FederatedID: "google-sub-1",
			Attributes:  entity.StudentAttributes{},
		})
		require.NoError(t, err)
		assert.Nil(t, identity.SecretHash)
		require.NotNil(t, identity.FederatedID)
		assert.Equal(t, "google-sub-1", *identity.FederatedID)
	})

	t.Run("role attributes are required for local registration", func(t *testing.T) {
		tests := []struct {
			name   string
			attrs  entity.RoleAttributes
			fields []string
		}{
			{name: "student without card", attrs: entity.StudentAttributes{}, fields: []string{"identityCardNumber"}},
			{name: "company without details", attrs: entity.CompanyAttributes{}, fields: []string{"company", "companyRegistration"}},
			{name: "no role", attrs: nil, fields: []string{"role"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := newTestStore(newMockIdentityRepository(), fixedNow)
				_, err := store.CreateIdentity(ctx, NewIdentity{
					DisplayName: "Someone",
					Email:       "someone@example.com",
					Password:    "secret1",
					Attributes:  tt.attrs,
				})
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				for _, f := range tt.fields {
					assert.Contains(t, ve.Fields, f)
				}
			})
		}
	})

	t.Run("duplicate email differing only in case", func(t *testing.T) {
		repo := newMockIdentityRepository()
		store := newTestStore(repo, fixedNow)
		in := NewIdentity{
			DisplayName: "First",
			Email:       "dup@example.com",
			Password:    "secret1",
			Attributes:  entity.StudentAttributes{IdentityCardNumber: "S-1"},
		}
		_, err := store.CreateIdentity(ctx, in)
		require.NoError(t, err)

		in.Email = "DUP@example.com"
		_, err = store.CreateIdentity(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateIdentity)
	})
}

func TestCredentialStore_VerifySecret(t *testing.T) {
	repo := newMockIdentityRepository()
	store := newTestStore(repo, fixedNow)
	withSecret := repo.put(entity.Identity{ID: "u1", Email: "a@example.com"}, "secret1")
	federated := entity.Identity{ID: "u2", FederatedID: strPtr("sub")}

	tests := []struct {
		name     string
		identity *entity.Identity
		guess    string
		want     bool
	}{
		{name: "correct password", identity: &withSecret, guess: "secret1", want: true},
		{name: "wrong password", identity: &withSecret, guess: "secret2", want: false},
		{name: "empty guess", identity: &withSecret, guess: "", want: false},
		{name: "no stored secret", identity: &federated, guess: "secret1", want: false},
		{name: "no identity", identity: nil, guess: "secret1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.VerifySecret(tt.identity, tt.guess))
		})
	}
}

func TestCredentialStore_RecordSuccessfulAuth(t *testing.T) {
	repo := newMockIdentityRepository()
	store := newTestStore(repo, fixedNow)
	repo.put(entity.Identity{ID: "u1", Email: "a@example.com", Active: true}, "")

	require.NoError(t, store.RecordSuccessfulAuth(context.Background(), "u1"))

	got := repo.get("u1")
	require.NotNil(t, got.LastAuthenticatedAt)
	assert.Equal(t, fixedNow, *got.LastAuthenticatedAt)
}

func TestCredentialStore_UpdateMutableFields(t *testing.T) {
	ctx := context.Background()

	setup := func() (*mockIdentityRepository, *CredentialStore) {
		repo := newMockIdentityRepository()
		repo.put(entity.Identity{
			ID: "u1", DisplayName: "Old Name", Email: "me@example.com", Role: entity.RoleStudent,
			Attributes: entity.StudentAttributes{IdentityCardNumber: "S-1"}, Active: true,
		}, "secret1")
		repo.put(entity.Identity{ID: "u2", Email: "taken@example.com", Active: true}, "")
		return repo, newTestStore(repo, fixedNow)
	}

	t.Run("updates only provided fields", func(t *testing.T) {
		repo, store := setup()
		updated, err := store.UpdateMutableFields(ctx, "u1", ProfileUpdate{DisplayName: strPtr(" New Name ")})
		require.NoError(t, err)
		assert.Equal(t, "New Name", updated.DisplayName)
		assert.Equal(t, "me@example.com", updated.Email)
		assert.Nil(t, updated.SecretHash)
		// role and hash untouched
		stored := repo.get("u1")
		assert.Equal(t, entity.RoleStudent, stored.Role)
		assert.True(t, stored.HasSecret())
	})

	t.Run("email change to a taken address", func(t *testing.T) {
		_, store := setup()
		_, err := store.UpdateMutableFields(ctx, "u1", ProfileUpdate{Email: strPtr("Taken@Example.com")})
		assert.ErrorIs(t, err, ErrEmailInUse)
	})

	t.Run("same email in different case is a no-op", func(t *testing.T) {
		repo, store := setup()
		_, err := store.UpdateMutableFields(ctx, "u1", ProfileUpdate{Email: strPtr("ME@example.com")})
		require.NoError(t, err)
		assert.Empty(t, repo.updates)
	})

	t.Run("invalid fields are reported together", func(t *testing.T) {
		_, store := setup()
		_, err := store.UpdateMutableFields(ctx, "u1", ProfileUpdate{DisplayName: strPtr("x"), Email: strPtr("nope")})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "name")
		assert.Contains(t, ve.Fields, "email")
	})

	t.Run("unknown identity", func(t *testing.T) {
		_, store := setup()
		_, err := store.UpdateMutableFields(ctx, "missing", ProfileUpdate{DisplayName: strPtr("Name")})
		assert.ErrorIs(t, err, ErrIdentityNotFound)
	})
}

func TestCredentialStore_ChangeSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("same password is not re-hashed", func(t *testing.T) {
		repo := newMockIdentityRepository()
		before := repo.put(entity.Identity{ID: "u1", Email: "a@example.com"}, "secret1")
		store := newTestStore(repo, fixedNow)

		require.NoError(t, store.ChangeSecret(ctx, "u1", "secret1"))
		assert.Equal(t, *before.SecretHash, *repo.get("u1").SecretHash)
		assert.Empty(t, repo.updates)
	})

	t.Run("new password replaces the hash", func(t *testing.T) {
		repo := newMockIdentityRepository()
		repo.put(entity.Identity{ID: "u1", Email: "a@example.com"}, "secret1")
		store := newTestStore(repo, fixedNow)

		require.NoError(t, store.ChangeSecret(ctx, "u1", "secret2"))
		stored := repo.get("u1")
		assert.True(t, store.VerifySecret(&stored, "secret2"))
		assert.False(t, store.VerifySecret(&stored, "secret1"))
	})

	t.Run("too short", func(t *testing.T) {
		store := newTestStore(newMockIdentityRepository(), fixedNow)
		var ve *ValidationError
		require.ErrorAs(t, store.ChangeSecret(ctx, "u1", "abc"), &ve)
		assert.Contains(t, ve.Fields, "password")
	})

	t.Run("too long for bcrypt", func(t *testing.T) {
		repo := newMockIdentityRepository()
		repo.put(entity.Identity{ID: "u1", Email: "a@example.com"}, "secret1")
		store := newTestStore(repo, fixedNow)

		var ve *ValidationError
		// 25文字でも75バイトになる
		require.ErrorAs(t, store.ChangeSecret(ctx, "u1", strings.Repeat("パ", 25)), &ve)
		assert.Equal(t, "must be at most 72 bytes", ve.Fields["password"])
		assert.Empty(t, repo.updates)
	})
}

func TestCredentialStore_LinkFederatedIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("links an unlinked account and refreshes the picture", func(t *testing.T) {
		repo := newMockIdentityRepository()
		repo.put(entity.Identity{ID: "u1", Email: "a@example.com", Active: true}, "secret1")
		store := newTestStore(repo, fixedNow)

		current, err := store.FindByID(ctx, "u1")
		require.NoError(t, err)
		linked, err := store.LinkFederatedIdentity(ctx, current, "sub-1", "https://example.com/p.png")
		require.NoError(t, err)
		require.NotNil(t, linked.FederatedID)
		assert.Equal(t, "sub-1", *linked.FederatedID)
		assert.Equal(t, "https://example.com/p.png", linked.ProfilePicture)
		stored := repo.get("u1")
		assert.True(t, stored.HasSecret())
	})

	t.Run("existing link is kept", func(t *testing.T) {
		repo := newMockIdentityRepository()
		repo.put(entity.Identity{ID: "u1", Email: "a@example.com", FederatedID: strPtr("sub-old")}, "")
		store := newTestStore(repo, fixedNow)

		current, _ := store.FindByID(ctx, "u1")
		linked, err := store.LinkFederatedIdentity(ctx, current, "sub-new", "")
		require.NoError(t, err)
		assert.Equal(t, "sub-old", *linked.FederatedID)
		assert.Empty(t, repo.updates)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := newMockIdentityRepository()
		repo.UpdateFunc = func(context.Context, string, IdentityUpdate) error { return errors.New("db down") }
		store := newTestStore(repo, fixedNow)

		_, err := store.LinkFederatedIdentity(ctx, &entity.Identity{ID: "u1"}, "sub", "")
		assert.EqualError(t, err, "db down")
	})
}

func TestCredentialStore_SetActive(t *testing.T) {
	repo := newMockIdentityRepository()
	repo.put(entity.Identity{ID: "u1", Email: "a@example.com", Active: true}, "")
	store := newTestStore(repo, fixedNow)

	identity, err := store.SetActive(context.Background(), "A@example.com", false)
	require.NoError(t, err)
	assert.False(t, identity.Active)
	assert.False(t, repo.get("u1").Active)

	_, err = store.SetActive(context.Background(), "nobody@example.com", true)
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}
