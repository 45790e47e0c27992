// Package adapters はjobsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"workzone_backend/internal/feature/jobs/domain/entity"
	"workzone_backend/internal/feature/jobs/usecase"
)

// jobGorm はJobRepositoryインターフェースのGORM実装です。
type jobGorm struct {
	db      *gorm.DB
	timeout time.Duration
}

// jobGormがJobRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.JobRepository = (*jobGorm)(nil)

// NewJobGorm は指定されたgorm.DB接続でjobGormの新しいインスタンスを生成します。
func NewJobGorm(db *gorm.DB, timeout time.Duration) *jobGorm {
	return &jobGorm{db: db, timeout: timeout}
}

func (r *jobGorm) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// List は公開中の求人を作成日時の降順で取得します。
func (r *jobGorm) List(ctx context.Context) ([]entity.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var models []JobModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	jobs := make([]entity.Job, len(models))
	for i := range models {
		jobs[i] = models[i].ToEntity()
	}
	return jobs, nil
}

// FindByID はIDで求人を取得します。存在しない場合、usecase.ErrJobNotFoundを返します。
func (r *jobGorm) FindByID(ctx context.Context, id string) (*entity.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var m JobModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrJobNotFound
		}
		return nil, err
	}
	job := m.ToEntity()
	return &job, nil
}

// Create は求人を追加します。
func (r *jobGorm) Create(ctx context.Context, job *entity.Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	m := JobModelFromEntity(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	job.CreatedAt = m.CreatedAt
	job.UpdatedAt = m.UpdatedAt
	return nil
}

// Update は投稿者と作成日時以外の全カラムを上書きします。
func (r *jobGorm) Update(ctx context.Context, job *entity.Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	m := JobModelFromEntity(job)
	res := r.db.WithContext(ctx).Model(&JobModel{}).
		Where("id = ?", job.ID).
		Select("*").
		Omit("id", "posted_by", "created_at").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("update job %s: %w", job.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrJobNotFound
	}
	job.UpdatedAt = m.UpdatedAt
	return nil
}

// Delete は求人を削除します。
func (r *jobGorm) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&JobModel{})
	if res.Error != nil {
		return fmt.Errorf("delete job %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrJobNotFound
	}
	return nil
}
