// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"workzone_backend/internal/feature/auth/domain/entity"
	"workzone_backend/internal/feature/auth/usecase"
	"workzone_backend/internal/platform/db"
)

// identityGorm はIdentityRepositoryインターフェースのGORM実装です。
// 全ての操作にストアのタイムアウトを設定します。
type identityGorm struct {
	db      *gorm.DB
	timeout time.Duration
}

// identityGormがIdentityRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.IdentityRepository = (*identityGorm)(nil)

// NewIdentityGorm は指定されたgorm.DB接続でidentityGormの新しいインスタンスを生成します。
// timeoutが0以下の場合、タイムアウトは設定しません。
func NewIdentityGorm(db *gorm.DB, timeout time.Duration) *identityGorm {
	return &identityGorm{db: db, timeout: timeout}
}

func (r *identityGorm) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Create はIDレコードを追加します。
// メールアドレスまたは外部IDが重複する場合、usecase.ErrDuplicateIdentityを返します。
func (r *identityGorm) Create(ctx context.Context, identity *entity.Identity) error {
	if identity == nil {
		return errors.New("identity is nil")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	m := IdentityModelFromEntity(identity)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrDuplicateIdentity
		}
		return err
	}
	identity.CreatedAt = m.CreatedAt
	identity.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByEmail はメールアドレスでIDレコードを取得します。
// 存在しない場合、usecase.ErrIdentityNotFoundを返します。
func (r *identityGorm) FindByEmail(ctx context.Context, email string, includeSecret bool) (*entity.Identity, error) {
	return r.first(ctx, includeSecret, "email = ?", email)
}

// FindByID はIDでIDレコードを取得します。
func (r *identityGorm) FindByID(ctx context.Context, id string) (*entity.Identity, error) {
	return r.first(ctx, false, "id = ?", id)
}

// FindByFederatedID は外部IDでIDレコードを取得します。
func (r *identityGorm) FindByFederatedID(ctx context.Context, federatedID string) (*entity.Identity, error) {
	return r.first(ctx, false, "federated_id = ?", federatedID)
}

func (r *identityGorm) first(ctx context.Context, includeSecret bool, query string, arg any) (*entity.Identity, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx := r.db.WithContext(ctx).Model(&IdentityModel{})
	if !includeSecret {
		tx = tx.Omit("password")
	}
	var m IdentityModel
	if err := tx.Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrIdentityNotFound
		}
		return nil, err
	}
	if !includeSecret {
		m.Password = nil
	}
	return m.ToEntity()
}

// Update はnilでないフィールドのみを更新します。
func (r *identityGorm) Update(ctx context.Context, id string, fields usecase.IdentityUpdate) error {
	values := updateColumns(fields)
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&IdentityModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return usecase.ErrDuplicateIdentity
		}
		return fmt.Errorf("update identity %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrIdentityNotFound
	}
	return nil
}

func updateColumns(f usecase.IdentityUpdate) map[string]any {
	values := map[string]any{}
	if f.DisplayName != nil {
		values["name"] = *f.DisplayName
	}
	if f.Email != nil {
		values["email"] = *f.Email
	}
	if f.Phone != nil {
		values["phone"] = *f.Phone
	}
	if f.ProfilePicture != nil {
		values["profile_picture"] = *f.ProfilePicture
	}
	if f.SecretHash != nil {
		values["password"] = *f.SecretHash
	}
	if f.FederatedID != nil {
		values["federated_id"] = *f.FederatedID
	}
	if f.Active != nil {
		values["is_active"] = *f.Active
	}
	if f.LastAuthenticatedAt != nil {
		values["last_login"] = *f.LastAuthenticatedAt
	}
	return values
}
