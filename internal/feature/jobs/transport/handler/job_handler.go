// Package handler はjobsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"workzone_backend/internal/api"
	authentity "workzone_backend/internal/feature/auth/domain/entity"
	authusecase "workzone_backend/internal/feature/auth/usecase"
	"workzone_backend/internal/feature/jobs/domain/entity"
	"workzone_backend/internal/feature/jobs/transport/http/dto"
	"workzone_backend/internal/feature/jobs/usecase"
	jwtmw "workzone_backend/internal/platform/jwt"
)

// JobsUsecase は求人操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type JobsUsecase interface {
	List(ctx context.Context) ([]entity.Job, error)
	Get(ctx context.Context, id string) (*entity.Job, error)
	Create(ctx context.Context, caller *authentity.Identity, in usecase.JobInput) (*entity.Job, error)
	Update(ctx context.Context, caller *authentity.Identity, id string, patch usecase.JobPatch) (*entity.Job, error)
	Delete(ctx context.Context, caller *authentity.Identity, id string) error
}

// JobHandler は求人APIのHTTPリクエストを処理します。
type JobHandler struct {
	jobs JobsUsecase
	// exposeDetail が true の場合、500応答に内部エラーの文言を含めます（本番以外）。
	exposeDetail bool
}

// NewJobHandler はJobHandlerの新しいインスタンスを生成します。
func NewJobHandler(jobs JobsUsecase, exposeDetail bool) *JobHandler {
	return &JobHandler{jobs: jobs, exposeDetail: exposeDetail}
}

// List は公開中の求人一覧を返します。
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		h.respondError(c, "list jobs", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobListResponse(jobs))
}

// Get は求人を1件返します。
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, dto.JobEnvelope{Success: true, Job: dto.NewJobResponse(job)})
}

// Create は求人を作成します。
// - AuthRequired と RequireRole(company) の後に配置します
// - 成功時は201を返却
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create job: invalid body", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.Fail("invalid request body"))
		return
	}
	caller, _ := jwtmw.CurrentIdentity(c)

	job, err := h.jobs.Create(c.Request.Context(), caller, req.ToInput())
	if err != nil {
		h.respondError(c, "create job", err)
		return
	}
	slog.Info("job created", "job_id", job.ID, "posted_by", job.PostedBy, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.JobEnvelope{Success: true, Message: "Job created successfully", Job: dto.NewJobResponse(job)})
}

// Update は投稿者本人の求人を更新します。
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update job: invalid body", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.Fail("invalid request body"))
		return
	}
	caller, _ := jwtmw.CurrentIdentity(c)

	job, err := h.jobs.Update(c.Request.Context(), caller, id, req.ToPatch())
	if err != nil {
		h.respondError(c, "update job", err)
		return
	}
	c.JSON(http.StatusOK, dto.JobEnvelope{Success: true, Message: "Job updated successfully", Job: dto.NewJobResponse(job)})
}

// Delete は投稿者本人の求人を削除します。
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	caller, _ := jwtmw.CurrentIdentity(c)

	if err := h.jobs.Delete(c.Request.Context(), caller, id); err != nil {
		h.respondError(c, "delete job", err)
		return
	}
	slog.Info("job deleted", "job_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Success: true, Message: "Job deleted successfully"})
}

// bindID binds the :id path parameter. On failure it writes 400 and returns false.
func bindID(c *gin.Context) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || id == "" {
		c.JSON(http.StatusBadRequest, api.Fail("invalid job id"))
		return "", false
	}
	return id, true
}

// respondError maps usecase errors to HTTP responses.
func (h *JobHandler) respondError(c *gin.Context, op string, err error) {
	var ve *authusecase.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, api.Invalid(ve.Fields))
	case errors.Is(err, usecase.ErrJobNotFound):
		c.JSON(http.StatusNotFound, api.Fail("Job not found"))
	case errors.Is(err, authusecase.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, api.Fail("Not authorized"))
	case errors.Is(err, authusecase.ErrForbidden):
		slog.Warn(op+": forbidden", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, api.Fail("Not authorized to access this resource"))
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		resp := api.Fail("Internal server error")
		if h.exposeDetail {
			resp.Detail = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}
