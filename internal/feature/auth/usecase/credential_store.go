package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"workzone_backend/internal/feature/auth/domain/entity"
)

const (
	// passwordHashCost はbcryptのコストです。1回のハッシュが数十ミリ秒程度になる値です。
	passwordHashCost = 10

	// dummyPasswordHash はユーザーが存在しない場合にも比較コストを揃えるためのハッシュです。
	dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// IdentityRepository はIDレコードの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type IdentityRepository interface {
	// Create は新しいIDレコードを保存します。
	// メールアドレスまたは外部IDが重複する場合、ErrDuplicateIdentityを返します。
	Create(ctx context.Context, identity *entity.Identity) error

	// FindByEmail はメールアドレスでIDレコードを取得します。
	// includeSecretがfalseの場合、パスワードハッシュは読み込みません。
	FindByEmail(ctx context.Context, email string, includeSecret bool) (*entity.Identity, error)

	// FindByID はIDでIDレコードを取得します。パスワードハッシュは読み込みません。
	FindByID(ctx context.Context, id string) (*entity.Identity, error)

	// FindByFederatedID は外部IDプロバイダーのsubjectでIDレコードを取得します。
	FindByFederatedID(ctx context.Context, federatedID string) (*entity.Identity, error)

	// Update はnilでないフィールドのみを更新します。
	// 存在しない場合はErrIdentityNotFound、一意制約違反の場合はErrDuplicateIdentityを返します。
	Update(ctx context.Context, id string, fields IdentityUpdate) error
}

// IdentityUpdate lists the columns an update may touch. Nil means unchanged.
type IdentityUpdate struct {
	DisplayName         *string
	Email               *string
	Phone               *string
	ProfilePicture      *string
	SecretHash          *string
	FederatedID         *string
	Active              *bool
	LastAuthenticatedAt *time.Time
}

func (u IdentityUpdate) empty() bool {
	return u == IdentityUpdate{}
}

// NewIdentity is the input of CreateIdentity.
type NewIdentity struct {
	DisplayName    string
	Email          string
	Phone          string
	ProfilePicture string
	// Password is the plaintext secret; empty for federated sign-ups.
	Password string
	// FederatedID is the external subject; empty for local registrations.
	FederatedID string
	Attributes  entity.RoleAttributes
}

// ProfileUpdate carries the caller-editable fields. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName    *string `json:"name" validate:"omitnil,min=2,max=50"`
	Email          *string `json:"email" validate:"omitnil,email"`
	Phone          *string `json:"phone" validate:"omitnil,min=1,max=32"`
	ProfilePicture *string `json:"profilePicture" validate:"omitnil,max=1024"`
}

// CredentialStore owns identity records: creation, lookup, secret hashing and verification.
type CredentialStore struct {
	repo IdentityRepository
	now  func() time.Time
	cost int
}

// NewCredentialStore はCredentialStoreの新しいインスタンスを生成します。
func NewCredentialStore(repo IdentityRepository) *CredentialStore {
	return &CredentialStore{
		repo: repo,
		now:  time.Now,
		cost: passwordHashCost,
	}
}

// CreateIdentity はロールごとの必須項目を検証し、パスワードをハッシュ化して新しいIDレコードを作成します。
// ローカル登録ではロール属性が必須です。外部ログインによる作成ではプロフィール補完まで属性を空で持てます。
func (s *CredentialStore) CreateIdentity(ctx context.Context, in NewIdentity) (*entity.Identity, error) {
	ve := &ValidationError{}
	if in.Attributes == nil {
		ve.add("role", "is required")
	}
	if in.Password == "" && in.FederatedID == "" {
		ve.add("password", "is required")
	}
	if in.Password != "" {
		validatePassword(ve, in.Password)
		validateRoleAttributes(ve, in.Attributes)
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	now := s.now()
	identity := &entity.Identity{
		ID:             uuid.NewString(),
		DisplayName:    strings.TrimSpace(in.DisplayName),
		Email:          normalizeEmail(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		ProfilePicture: in.ProfilePicture,
		Role:           in.Attributes.Role(),
		Attributes:     in.Attributes,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Password != "" {
		hashed, err := s.hash(in.Password)
		if err != nil {
			return nil, err
		}
		identity.SecretHash = &hashed
	}
	if in.FederatedID != "" {
		fid := in.FederatedID
		identity.FederatedID = &fid
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// FindByEmail は大文字小文字を区別せずにメールアドレスで検索します。
func (s *CredentialStore) FindByEmail(ctx context.Context, email string, includeSecret bool) (*entity.Identity, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email), includeSecret)
}

// FindByID はIDで検索します。パスワードハッシュは含みません。
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*entity.Identity, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByFederatedID は外部IDで検索します。
func (s *CredentialStore) FindByFederatedID(ctx context.Context, federatedID string) (*entity.Identity, error) {
	return s.repo.FindByFederatedID(ctx, federatedID)
}

// VerifySecret はパスワードを比較します。例外は投げず、ハッシュが無い場合や空の入力はfalseです。
// タイミング差を抑えるため、比較できない場合もダミーハッシュに対してbcryptを実行します。
func (s *CredentialStore) VerifySecret(identity *entity.Identity, guess string) bool {
	if identity == nil || !identity.HasSecret() || guess == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(guess))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*identity.SecretHash), []byte(guess)) == nil
}

// RecordSuccessfulAuth は最終認証日時を現在時刻に更新します。
func (s *CredentialStore) RecordSuccessfulAuth(ctx context.Context, id string) error {
	now := s.now()
	return s.repo.Update(ctx, id, IdentityUpdate{LastAuthenticatedAt: &now})
}

// UpdateMutableFields は表示名・連絡先・プロフィール画像のみを更新します。
// メールアドレスが変わる場合は一意性を再確認し、競合時はErrEmailInUseを返します。
func (s *CredentialStore) UpdateMutableFields(ctx context.Context, id string, in ProfileUpdate) (*entity.Identity, error) {
	if in.DisplayName != nil {
		trimmed := strings.TrimSpace(*in.DisplayName)
		in.DisplayName = &trimmed
	}
	if in.Email != nil {
		normalized := normalizeEmail(*in.Email)
		in.Email = &normalized
	}
	if in.Phone != nil {
		trimmed := strings.TrimSpace(*in.Phone)
		in.Phone = &trimmed
	}

	ve := &ValidationError{}
	if err := validateStruct(ve, in); err != nil {
		return nil, err
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := IdentityUpdate{
		DisplayName:    in.DisplayName,
		Phone:          in.Phone,
		ProfilePicture: in.ProfilePicture,
	}
	if in.Email != nil && *in.Email != current.Email {
		update.Email = in.Email
	}
	if update.empty() {
		return current, nil
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ChangeSecret はパスワードを変更します。現在のパスワードと同じ場合は再ハッシュしません。
func (s *CredentialStore) ChangeSecret(ctx context.Context, id, password string) error {
	ve := &ValidationError{}
	validatePassword(ve, password)
	if err := ve.orNil(); err != nil {
		return err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	withSecret, err := s.repo.FindByEmail(ctx, current.Email, true)
	if err != nil {
		return err
	}
	if withSecret.HasSecret() && bcrypt.CompareHashAndPassword([]byte(*withSecret.SecretHash), []byte(password)) == nil {
		return nil
	}

	hashed, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, id, IdentityUpdate{SecretHash: &hashed})
}

// LinkFederatedIdentity は既存のローカルアカウントに外部IDを紐付け、プロフィール画像を更新します。
// 外部IDが既に設定済みの場合は上書きしません。
func (s *CredentialStore) LinkFederatedIdentity(ctx context.Context, identity *entity.Identity, federatedID, pictureURL string) (*entity.Identity, error) {
	var update IdentityUpdate
	if !identity.IsFederated() && federatedID != "" {
		update.FederatedID = &federatedID
	}
	if pictureURL != "" && pictureURL != identity.ProfilePicture {
		update.ProfilePicture = &pictureURL
	}
	if update.empty() {
		return identity, nil
	}
	if err := s.repo.Update(ctx, identity.ID, update); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, identity.ID)
}

// SetActive はアカウントの有効・無効を切り替えます。
func (s *CredentialStore) SetActive(ctx context.Context, email string, active bool) (*entity.Identity, error) {
	identity, err := s.FindByEmail(ctx, email, false)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, identity.ID, IdentityUpdate{Active: &active}); err != nil {
		return nil, err
	}
	identity.Active = active
	return identity, nil
}

func (s *CredentialStore) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// validatePassword checks the length bounds bcrypt can hash.
func validatePassword(ve *ValidationError, password string) {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		ve.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	case len(password) > maxPasswordBytes:
		ve.add("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
}

// validateRoleAttributes checks the variant-specific required fields.
func validateRoleAttributes(ve *ValidationError, attrs entity.RoleAttributes) {
	switch a := attrs.(type) {
	case entity.StudentAttributes:
		if strings.TrimSpace(a.IdentityCardNumber) == "" {
			ve.add("identityCardNumber", "is required for student accounts")
		}
	case entity.CompanyAttributes:
		if strings.TrimSpace(a.CompanyName) == "" {
			ve.add("company", "is required for company accounts")
		}
		if strings.TrimSpace(a.CompanyRegistration) == "" {
			ve.add("companyRegistration", "is required for company accounts")
		}
	case nil:
	default:
		ve.add("role", "is invalid")
	}
}
