// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"workzone_backend/internal/api"
	"workzone_backend/internal/feature/auth/domain/entity"
	"workzone_backend/internal/feature/auth/transport/http/dto"
	"workzone_backend/internal/feature/auth/usecase"
	jwtmw "workzone_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規IDを作成し、トークンを返します。
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error)
	// Login はメールアドレスとパスワードで認証し、トークンを返します。
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	// FederatedLogin は外部IDプロバイダーのアサーションで認証します。
	FederatedLogin(ctx context.Context, credential string) (*usecase.AuthResult, error)
	// UpdateProfile は変更可能なプロフィール項目を更新します。
	UpdateProfile(ctx context.Context, id string, in usecase.ProfileUpdate) (*entity.Identity, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth AuthUsecase
	// exposeDetail が true の場合、500応答に内部エラーの文言を含めます（本番以外）。
	exposeDetail bool
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, exposeDetail bool) *AuthHandler {
	return &AuthHandler{auth: auth, exposeDetail: exposeDetail}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 入力エラーはフィールドごとにまとめて400で返却
// - メール重複時は409を返却
// - 成功時はトークン付きで201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register: invalid body", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.Fail("invalid request body"))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		h.respondError(c, "register", err, "email", req.Email)
		return
	}
	slog.Info("user registered", "user_id", res.Identity.ID, "role", res.Identity.Role, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.AuthResponse{Success: true, Token: res.Token, User: dto.NewUserResponse(res.Identity)})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時はどの要素が誤っているかを返さず401を返却
// - 無効化されたアカウントは403を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Fail("Please provide email and password"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, "login", err, "email", req.Email)
		return
	}
	slog.Info("user login successful", "user_id", res.Identity.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthResponse{Success: true, Token: res.Token, User: dto.NewUserResponse(res.Identity)})
}

// Google は外部IDトークンでログインし、未登録なら新規作成します。
func (h *AuthHandler) Google(c *gin.Context) {
	var req dto.GoogleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Fail("invalid request body"))
		return
	}

	res, err := h.auth.FederatedLogin(c.Request.Context(), req.Credential)
	if err != nil {
		h.respondError(c, "google login", err)
		return
	}
	isNew := res.IsNewUser
	slog.Info("google login successful", "user_id", res.Identity.ID, "new_user", isNew, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthResponse{
		Success:   true,
		Token:     res.Token,
		User:      dto.NewUserResponse(res.Identity),
		IsNewUser: &isNew,
	})
}

// Me は認証済みIDの情報を返します。AuthRequiredの後に配置します。
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := jwtmw.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Fail("Not authorized"))
		return
	}
	c.JSON(http.StatusOK, dto.UserEnvelope{Success: true, User: dto.NewUserResponse(identity)})
}

// Logout はクライアント側でのトークン破棄を前提とし、サーバー側の状態は変更しません。
func (h *AuthHandler) Logout(c *gin.Context) {
	if identity, ok := jwtmw.CurrentIdentity(c); ok {
		slog.Info("user logout", "user_id", identity.ID, "remote_addr", c.ClientIP())
	}
	c.JSON(http.StatusOK, api.MessageResponse{Success: true, Message: "Logged out successfully"})
}

// UpdateProfile は名前・電話番号・プロフィール画像などを更新します。
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	identity, ok := jwtmw.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Fail("Not authorized"))
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Fail("invalid request body"))
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), identity.ID, req.ToUpdate())
	if err != nil {
		h.respondError(c, "update profile", err, "user_id", identity.ID)
		return
	}
	c.JSON(http.StatusOK, dto.UserEnvelope{Success: true, User: dto.NewUserResponse(updated)})
}

// respondError maps usecase errors to HTTP responses.
// 認証失敗の詳細はログにのみ残し、応答には含めません。
func (h *AuthHandler) respondError(c *gin.Context, op string, err error, attrs ...any) {
	logAttrs := append([]any{"error", err, "remote_addr", c.ClientIP()}, attrs...)

	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, api.Invalid(ve.Fields))
	case errors.Is(err, usecase.ErrEmailInUse):
		slog.Warn(op+" failed", logAttrs...)
		c.JSON(http.StatusConflict, api.Fail("User with this email already exists"))
	case errors.Is(err, usecase.ErrFederatedAccount):
		slog.Warn(op+" failed", logAttrs...)
		c.JSON(http.StatusUnauthorized, api.Fail("This account uses Google Sign-In, please login with Google"))
	case errors.Is(err, usecase.ErrInvalidCredentials):
		slog.Warn(op+" failed", logAttrs...)
		c.JSON(http.StatusUnauthorized, api.Fail("Invalid credentials"))
	case errors.Is(err, usecase.ErrFederatedAssertion):
		slog.Warn(op+" failed", logAttrs...)
		c.JSON(http.StatusUnauthorized, api.Fail("Google authentication failed"))
	case errors.Is(err, usecase.ErrAccountDisabled):
		slog.Warn(op+" failed", logAttrs...)
		c.JSON(http.StatusForbidden, api.Fail("Account is disabled"))
	case errors.Is(err, usecase.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, api.Fail("Not authorized"))
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, api.Fail("Not authorized to access this resource"))
	case errors.Is(err, usecase.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, api.Fail("User not found"))
	case errors.Is(err, usecase.ErrTooManyAttempts):
		slog.Warn(op+" throttled", logAttrs...)
		c.JSON(http.StatusTooManyRequests, api.Fail("Too many login attempts, please try again later"))
	case errors.Is(err, usecase.ErrFederatedUnavailable):
		slog.Error(op+" failed", logAttrs...)
		c.JSON(http.StatusServiceUnavailable, api.Fail("Google Sign-In is not configured"))
	default:
		slog.Error(op+" failed", logAttrs...)
		resp := api.Fail("Internal server error")
		if h.exposeDetail {
			resp.Detail = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}
