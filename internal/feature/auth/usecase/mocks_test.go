package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"workzone_backend/internal/feature/auth/domain/entity"
)

// mockIdentityRepository is an in-memory IdentityRepository.
// Each XxxFunc overrides the in-memory behaviour when set.
type mockIdentityRepository struct {
	mu   sync.Mutex
	byID map[string]entity.Identity

	CreateFunc            func(ctx context.Context, identity *entity.Identity) error
	FindByEmailFunc       func(ctx context.Context, email string, includeSecret bool) (*entity.Identity, error)
	FindByIDFunc          func(ctx context.Context, id string) (*entity.Identity, error)
	FindByFederatedIDFunc func(ctx context.Context, federatedID string) (*entity.Identity, error)
	UpdateFunc            func(ctx context.Context, id string, fields IdentityUpdate) error

	updates []IdentityUpdate
}

func newMockIdentityRepository() *mockIdentityRepository {
	return &mockIdentityRepository{byID: map[string]entity.Identity{}}
}

func (m *mockIdentityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, identity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == identity.Email {
			return ErrDuplicateIdentity
		}
		if identity.IsFederated() && existing.IsFederated() && *existing.FederatedID == *identity.FederatedID {
			return ErrDuplicateIdentity
		}
	}
	m.byID[identity.ID] = *identity
	return nil
}

func (m *mockIdentityRepository) FindByEmail(ctx context.Context, email string, includeSecret bool) (*entity.Identity, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email, includeSecret)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == email {
			return copyIdentity(existing, includeSecret), nil
		}
	}
	return nil, ErrIdentityNotFound
}

func (m *mockIdentityRepository) FindByID(ctx context.Context, id string) (*entity.Identity, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[id]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return copyIdentity(existing, false), nil
}

func (m *mockIdentityRepository) FindByFederatedID(ctx context.Context, federatedID string) (*entity.Identity, error) {
	if m.FindByFederatedIDFunc != nil {
		return m.FindByFederatedIDFunc(ctx, federatedID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.IsFederated() && *existing.FederatedID == federatedID {
			return copyIdentity(existing, false), nil
		}
	}
	return nil, ErrIdentityNotFound
}

func (m *mockIdentityRepository) Update(ctx context.Context, id string, fields IdentityUpdate) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, fields)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, fields)
	existing, ok := m.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	if fields.Email != nil {
		for otherID, other := range m.byID {
			if otherID != id && other.Email == *fields.Email {
				return ErrDuplicateIdentity
			}
		}
		existing.Email = *fields.Email
	}
	if fields.DisplayName != nil {
		existing.DisplayName = *fields.DisplayName
	}
	if fields.Phone != nil {
		existing.Phone = *fields.Phone
	}
	if fields.ProfilePicture != nil {
		existing.ProfilePicture = *fields.ProfilePicture
	}
	if fields.SecretHash != nil {
		existing.SecretHash = fields.SecretHash
	}
	if fields.FederatedID != nil {
		existing.FederatedID = fields.FederatedID
	}
	if fields.Active != nil {
		existing.Active = *fields.Active
	}
	if fields.LastAuthenticatedAt != nil {
		existing.LastAuthenticatedAt = fields.LastAuthenticatedAt
	}
	m.byID[id] = existing
	return nil
}

// put stores an identity directly, hashing password when given.
func (m *mockIdentityRepository) put(identity entity.Identity, password string) entity.Identity {
	if password != "" {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		h := string(hashed)
		identity.SecretHash = &h
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[identity.ID] = identity
	return identity
}

func (m *mockIdentityRepository) get(id string) entity.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

func copyIdentity(i entity.Identity, includeSecret bool) *entity.Identity {
	if !includeSecret {
		i.SecretHash = nil
	}
	return &i
}

// mockTokenManager issues "token-<subject>" and parses it back.
type mockTokenManager struct {
	GenerateTokenFunc func(subject string) (string, error)
	ParseSubjectFunc  func(token string) (string, error)
}

func (m *mockTokenManager) GenerateToken(subject string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(subject)
	}
	return "token-" + subject, nil
}

func (m *mockTokenManager) ParseSubject(token string) (string, error) {
	if m.ParseSubjectFunc != nil {
		return m.ParseSubjectFunc(token)
	}
	subject, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return "", errors.New("token is invalid")
	}
	return subject, nil
}

type mockFederatedVerifier struct {
	VerifyFunc func(ctx context.Context, credential string) (*FederatedAssertion, error)
}

func (m *mockFederatedVerifier) Verify(ctx context.Context, credential string) (*FederatedAssertion, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, credential)
	}
	return nil, errors.New("verify not configured")
}

// mockLoginLimiter counts attempts per key and refuses past max.
type mockLoginLimiter struct {
	mu       sync.Mutex
	max      int
	attempts map[string]int
	err      error
}

func newMockLoginLimiter(max int) *mockLoginLimiter {
	return &mockLoginLimiter{max: max, attempts: map[string]int{}}
}

func (m *mockLoginLimiter) Allow(_ context.Context, key string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[key]++
	return m.attempts[key] <= m.max, nil
}

func (m *mockLoginLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, key)
	return nil
}

// newTestStore returns a store with cheap hashing and a fixed clock.
func newTestStore(repo IdentityRepository, now time.Time) *CredentialStore {
	s := NewCredentialStore(repo)
	s.cost = bcrypt.MinCost
	s.now = func() time.Time { return now }
	return s
}

func strPtr(s string) *string { return &s }
