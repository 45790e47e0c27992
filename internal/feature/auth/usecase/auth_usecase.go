package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"workzone_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6
	// maxPasswordBytes はbcryptが受け付ける入力の上限です。
	maxPasswordBytes = 72

	// bearerScheme is stripped from presented tokens when present, ignoring case.
	bearerScheme = "bearer"
)

// TokenManager はトークンの発行と検証を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenManager interface {
	// GenerateToken は指定されたsubjectの署名済みトークンを生成します。
	GenerateToken(subject string) (string, error)
	// ParseSubject は署名と有効期限を検証し、subjectを返します。
	ParseSubject(token string) (string, error)
}

// FederatedAssertion is an external identity already verified by the provider.
type FederatedAssertion struct {
	Subject    string
	Email      string
	Name       string
	PictureURL string
}

// FederatedVerifier はIDプロバイダーのアサーション検証を抽象化します。
type FederatedVerifier interface {
	Verify(ctx context.Context, credential string) (*FederatedAssertion, error)
}

// LoginLimiter はメールアドレス単位のログイン試行回数を制限します。
type LoginLimiter interface {
	// Allow は試行を1回数え、上限以内ならtrueを返します。
	Allow(ctx context.Context, key string) (bool, error)
	// Reset はカウンタを消去します。
	Reset(ctx context.Context, key string) error
}

// RegisterInput is the registration request after transport decoding.
type RegisterInput struct {
	Name                string `json:"name" validate:"required,min=2,max=50"`
	Email               string `json:"email" validate:"required,email"`
	Password            string `json:"password" validate:"required,min=6,maxbytes=72"`
	Phone               string `json:"phone" validate:"required,max=32"`
	Role                string `json:"role" validate:"required,oneof=student company"`
	IdentityCardNumber  string `json:"identityCardNumber" validate:"required_if=Role student"`
	Company             string `json:"company" validate:"required_if=Role company"`
	CompanyRegistration string `json:"companyRegistration" validate:"required_if=Role company"`
}

// AuthResult is returned by every successful login or registration.
type AuthResult struct {
	Token     string
	Identity  *entity.Identity
	IsNewUser bool
}

// AuthUsecase は認証ビジネスロジック（トークン発行・検証、ログイン、登録、外部ログイン）を実装します。
type AuthUsecase struct {
	store     *CredentialStore
	tokens    TokenManager
	federated FederatedVerifier
	limiter   LoginLimiter
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
// federatedとlimiterはnilでも構いません。
func NewAuthUsecase(store *CredentialStore, tokens TokenManager, federated FederatedVerifier, limiter LoginLimiter) *AuthUsecase {
	return &AuthUsecase{
		store:     store,
		tokens:    tokens,
		federated: federated,
		limiter:   limiter,
	}
}

// IssueToken は検証済みのIDに対してトークンを発行します。
func (u *AuthUsecase) IssueToken(identityID string) (string, error) {
	token, err := u.tokens.GenerateToken(identityID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、トークンを返します。
// 「ユーザーが存在しない」と「パスワード誤り」は区別しません。
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	key := "login:" + normalizeEmail(email)
	if err := u.checkLimiter(ctx, key); err != nil {
		return nil, err
	}

	identity, err := u.store.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			u.store.VerifySecret(nil, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	if !identity.Active {
		return nil, ErrAccountDisabled
	}
	if !identity.HasSecret() {
		return nil, ErrFederatedAccount
	}
	if !u.store.VerifySecret(identity, password) {
		return nil, ErrInvalidCredentials
	}

	if err := u.store.RecordSuccessfulAuth(ctx, identity.ID); err != nil {
		return nil, fmt.Errorf("failed to record authentication: %w", err)
	}
	token, err := u.IssueToken(identity.ID)
	if err != nil {
		return nil, err
	}
	u.resetLimiter(ctx, key)

	identity.SecretHash = nil
	return &AuthResult{Token: token, Identity: identity}, nil
}

// Register は全ての入力エラーをまとめて検証し、新規IDを作成してトークンを返します。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	ve := &ValidationError{}
	if err := validateStruct(ve, in); err != nil {
		return nil, err
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	identity, err := u.store.CreateIdentity(ctx, NewIdentity{
		DisplayName: in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Password:    in.Password,
		Attributes:  attributesFor(in),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	token, err := u.IssueToken(identity.ID)
	if err != nil {
		return nil, err
	}
	identity.SecretHash = nil
	return &AuthResult{Token: token, Identity: identity, IsNewUser: true}, nil
}

// FederatedLogin は外部IDプロバイダーのアサーションを検証し、ローカルIDへ対応付けます。
// 既存アカウントがあればログイン、無ければstudentロールで新規作成します。
func (u *AuthUsecase) FederatedLogin(ctx context.Context, credential string) (*AuthResult, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, &ValidationError{Fields: map[string]string{"credential": "is required"}}
	}
	if u.federated == nil {
		return nil, ErrFederatedUnavailable
	}

	assertion, err := u.federated.Verify(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFederatedAssertion, err)
	}

	identity, err := u.findFederated(ctx, assertion)
	isNew := false
	switch {
	case err == nil:
		if !identity.Active {
			return nil, ErrAccountDisabled
		}
		identity, err = u.store.LinkFederatedIdentity(ctx, identity, assertion.Subject, assertion.PictureURL)
		if err != nil {
			return nil, fmt.Errorf("failed to link federated identity: %w", err)
		}
	case errors.Is(err, ErrIdentityNotFound):
		identity, err = u.createFederated(ctx, assertion)
		if err != nil {
			return nil, err
		}
		isNew = true
	default:
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	if err := u.store.RecordSuccessfulAuth(ctx, identity.ID); err != nil {
		return nil, fmt.Errorf("failed to record authentication: %w", err)
	}
	token, err := u.IssueToken(identity.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Identity: identity, IsNewUser: isNew}, nil
}

// findFederated looks up by federated subject first, then by email.
func (u *AuthUsecase) findFederated(ctx context.Context, a *FederatedAssertion) (*entity.Identity, error) {
	identity, err := u.store.FindByFederatedID(ctx, a.Subject)
	if err == nil || !errors.Is(err, ErrIdentityNotFound) {
		return identity, err
	}
	return u.store.FindByEmail(ctx, a.Email, false)
}

func (u *AuthUsecase) createFederated(ctx context.Context, a *FederatedAssertion) (*entity.Identity, error) {
	identity, err := u.store.CreateIdentity(ctx, NewIdentity{
		DisplayName:    federatedDisplayName(a),
		Email:          a.Email,
		ProfilePicture: a.PictureURL,
		FederatedID:    a.Subject,
		Attributes:     entity.StudentAttributes{},
	})
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrDuplicateIdentity) {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	// 同時に同じアサーションで作成された場合は作成済みのレコードを使う
	identity, err = u.findFederated(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity after conflict: %w", err)
	}
	return identity, nil
}

// VerifyToken はトークンを検証し、IDを毎回ストアから読み直して返します。
// 期限切れと署名不正は内部的に区別されますが、どちらもErrUnauthenticatedとして扱われます。
func (u *AuthUsecase) VerifyToken(ctx context.Context, token string) (*entity.Identity, error) {
	token = stripBearer(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthenticated)
	}

	subject, err := u.tokens.ParseSubject(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	identity, err := u.store.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if !identity.Active {
		return nil, ErrAccountDisabled
	}
	return identity, nil
}

// stripBearer removes an optional "Bearer" scheme. The scheme is case-insensitive.
func stripBearer(token string) string {
	token = strings.TrimSpace(token)
	scheme, rest, found := strings.Cut(token, " ")
	if strings.EqualFold(scheme, bearerScheme) {
		if !found {
			return ""
		}
		return strings.TrimSpace(rest)
	}
	return token
}

// UpdateProfile は認証済みIDの変更可能な項目を更新します。
func (u *AuthUsecase) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*entity.Identity, error) {
	return u.store.UpdateMutableFields(ctx, id, in)
}

// RequireRole fails with ErrForbidden unless the identity's role is allowed.
func RequireRole(identity *entity.Identity, allowed ...entity.Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	for _, r := range allowed {
		if identity.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q is not allowed", ErrForbidden, identity.Role)
}

func (u *AuthUsecase) checkLimiter(ctx context.Context, key string) error {
	if u.limiter == nil {
		return nil
	}
	allowed, err := u.limiter.Allow(ctx, key)
	if err != nil {
		// レートリミッタの障害でログインを止めない
		slog.WarnContext(ctx, "login limiter unavailable", "error", err)
		return nil
	}
	if !allowed {
		return ErrTooManyAttempts
	}
	return nil
}

func (u *AuthUsecase) resetLimiter(ctx context.Context, key string) {
	if u.limiter == nil {
		return
	}
	if err := u.limiter.Reset(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to reset login limiter", "error", err)
	}
}

func attributesFor(in RegisterInput) entity.RoleAttributes {
	if entity.Role(in.Role) == entity.RoleCompany {
		return entity.CompanyAttributes{
			CompanyName:         strings.TrimSpace(in.Company),
			CompanyRegistration: strings.TrimSpace(in.CompanyRegistration),
		}
	}
	return entity.StudentAttributes{IdentityCardNumber: strings.TrimSpace(in.IdentityCardNumber)}
}

// federatedDisplayName falls back to the email's local part when the provider sends no usable name.
func federatedDisplayName(a *FederatedAssertion) string {
	name := strings.TrimSpace(a.Name)
	if len([]rune(name)) >= 2 {
		if len([]rune(name)) > 50 {
			name = string([]rune(name)[:50])
		}
		return name
	}
	local, _, _ := strings.Cut(a.Email, "@")
	if len([]rune(local)) < 2 {
		return "User"
	}
	return local
}
