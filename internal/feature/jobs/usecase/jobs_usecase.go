package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	authentity "workzone_backend/internal/feature/auth/domain/entity"
	authusecase "workzone_backend/internal/feature/auth/usecase"
	"workzone_backend/internal/feature/jobs/domain/entity"
	"workzone_backend/internal/shared/validation"
)

// JobRepository は求人の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type JobRepository interface {
	// List は公開中の求人を新しい順に返します。
	List(ctx context.Context) ([]entity.Job, error)
	// FindByID は求人を取得します。存在しない場合はErrJobNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.Job, error)
	Create(ctx context.Context, job *entity.Job) error
	// Update は求人全体を保存します。存在しない場合はErrJobNotFoundを返します。
	Update(ctx context.Context, job *entity.Job) error
	// Delete は求人を削除します。存在しない場合はErrJobNotFoundを返します。
	Delete(ctx context.Context, id string) error
}

// JobInput is the body of a create request.
type JobInput struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Company     string   `json:"company" validate:"required,max=255"`
	Location    string   `json:"location" validate:"required,max=255"`
	Rate        string   `json:"rate" validate:"required,max=64"`
	Amount      float64  `json:"amount" validate:"min=0"`
	Type        string   `json:"type" validate:"required,oneof=Part-Time Full-Time Freelance Contract"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=30"`
	LogoColor   string   `json:"logoColor" validate:"max=32"`
	Description string   `json:"description" validate:"max=5000"`
}

// JobPatch is the body of an update request. Nil means unchanged.
// postedBy is not part of it, so ownership cannot be transferred.
type JobPatch struct {
	Title       *string   `json:"title" validate:"omitnil,min=1,max=100"`
	Company     *string   `json:"company" validate:"omitnil,min=1,max=255"`
	Location    *string   `json:"location" validate:"omitnil,min=1,max=255"`
	Rate        *string   `json:"rate" validate:"omitnil,min=1,max=64"`
	Amount      *float64  `json:"amount" validate:"omitnil,min=0"`
	Type        *string   `json:"type" validate:"omitnil,oneof=Part-Time Full-Time Freelance Contract"`
	Tags        *[]string `json:"tags" validate:"omitnil,max=20,dive,max=30"`
	LogoColor   *string   `json:"logoColor" validate:"omitnil,max=32"`
	Description *string   `json:"description" validate:"omitnil,max=5000"`
	IsActive    *bool     `json:"isActive"`
}

// JobsUsecase は求人のビジネスロジックを実装します。
// 変更系の操作は、ロール確認、存在確認（404）、所有者確認（403）の順で判定します。
type JobsUsecase struct {
	repo JobRepository
	now  func() time.Time
}

// NewJobsUsecase はJobsUsecaseの新しいインスタンスを生成します。
func NewJobsUsecase(repo JobRepository) *JobsUsecase {
	return &JobsUsecase{repo: repo, now: time.Now}
}

// List は公開中の求人一覧を返します。
func (u *JobsUsecase) List(ctx context.Context) ([]entity.Job, error) {
	return u.repo.List(ctx)
}

// Get は求人を1件返します。
func (u *JobsUsecase) Get(ctx context.Context, id string) (*entity.Job, error) {
	return u.repo.FindByID(ctx, id)
}

// Create はcompanyロールの呼び出し元を投稿者として求人を作成します。
func (u *JobsUsecase) Create(ctx context.Context, caller *authentity.Identity, in JobInput) (*entity.Job, error) {
	if err := authusecase.RequireRole(caller, authentity.RoleCompany); err != nil {
		return nil, err
	}

	trimJobInput(&in)
	if err := validateJob(in); err != nil {
		return nil, err
	}

	now := u.now()
	job := &entity.Job{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		Rate:        in.Rate,
		Amount:      in.Amount,
		Type:        entity.JobType(in.Type),
		Tags:        normalizeTags(in.Tags),
		LogoColor:   in.LogoColor,
		Description: in.Description,
		PostedBy:    caller.ID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.LogoColor == "" {
		job.LogoColor = entity.DefaultLogoColor
	}

	if err := u.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// Update は投稿者本人のみが求人を変更できます。
func (u *JobsUsecase) Update(ctx context.Context, caller *authentity.Identity, id string, patch JobPatch) (*entity.Job, error) {
	job, err := u.ownedJob(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	trimJobPatch(&patch)
	if err := validateJob(patch); err != nil {
		return nil, err
	}
	applyPatch(job, patch)
	job.UpdatedAt = u.now()

	if err := u.repo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete は投稿者本人のみが求人を削除できます。
func (u *JobsUsecase) Delete(ctx context.Context, caller *authentity.Identity, id string) error {
	if _, err := u.ownedJob(ctx, caller, id); err != nil {
		return err
	}
	return u.repo.Delete(ctx, id)
}

// ownedJob applies role, existence and ownership gates in that order.
func (u *JobsUsecase) ownedJob(ctx context.Context, caller *authentity.Identity, id string) (*entity.Job, error) {
	if err := authusecase.RequireRole(caller, authentity.RoleCompany); err != nil {
		return nil, err
	}
	job, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(job, caller); err != nil {
		return nil, err
	}
	return job, nil
}

// ensureOwner fails with ErrForbidden unless caller posted the job.
func ensureOwner(job *entity.Job, caller *authentity.Identity) error {
	if caller == nil || !job.OwnedBy(caller.ID) {
		return fmt.Errorf("%w: not the owner of job %s", authusecase.ErrForbidden, job.ID)
	}
	return nil
}

func validateJob(s any) error {
	fields, err := validation.Struct(s)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return &authusecase.ValidationError{Fields: fields}
	}
	return nil
}

func trimJobInput(in *JobInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Location = strings.TrimSpace(in.Location)
	in.Rate = strings.TrimSpace(in.Rate)
	in.LogoColor = strings.TrimSpace(in.LogoColor)
}

func trimJobPatch(p *JobPatch) {
	for _, f := range []*string{p.Title, p.Company, p.Location, p.Rate, p.LogoColor} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func applyPatch(job *entity.Job, p JobPatch) {
	if p.Title != nil {
		job.Title = *p.Title
	}
	if p.Company != nil {
		job.Company = *p.Company
	}
	if p.Location != nil {
		job.Location = *p.Location
	}
	if p.Rate != nil {
		job.Rate = *p.Rate
	}
	if p.Amount != nil {
		job.Amount = *p.Amount
	}
	if p.Type != nil {
		job.Type = entity.JobType(*p.Type)
	}
	if p.Tags != nil {
		job.Tags = normalizeTags(*p.Tags)
	}
	if p.LogoColor != nil {
		job.LogoColor = *p.LogoColor
		if job.LogoColor == "" {
			job.LogoColor = entity.DefaultLogoColor
		}
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
	if p.IsActive != nil {
		job.Active = *p.IsActive
	}
}

// normalizeTags trims tags and drops empty ones. The result is never nil.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
