// Package router はHTTPルーティングを定義します。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"workzone_backend/internal/app/di"
	authentity "workzone_backend/internal/feature/auth/domain/entity"
	jwtmw "workzone_backend/internal/platform/jwt"
)

// defaultOrigins はFRONTEND_URLが未設定のときに許可する開発用オリジンです。
var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// NewRouter はルートを登録したginエンジンを返します。
func NewRouter(app *di.App, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultOrigins
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 導通確認用
	r.GET("/healthz", app.Health.Live)
	r.HEAD("/healthz", app.Health.Live)
	r.GET("/api/health", app.Health.Ready)

	authRequired := jwtmw.AuthRequired(app.Auth)

	// 認証
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", app.AuthH.Register)
		auth.POST("/login", app.AuthH.Login)
		auth.POST("/google", app.AuthH.Google)

		// 認証必須
		auth.GET("/me", authRequired, app.AuthH.Me)
		auth.POST("/logout", authRequired, app.AuthH.Logout)
		auth.PUT("/update-profile", authRequired, app.AuthH.UpdateProfile)
	}

	// 求人: 閲覧は公開、変更は company ロールのみ
	jobs := r.Group("/api/jobs")
	{
		jobs.GET("", app.JobsH.List)
		jobs.GET("/:id", app.JobsH.Get)

		companyOnly := []gin.HandlerFunc{authRequired, jwtmw.RequireRole(authentity.RoleCompany)}
		jobs.POST("", append(companyOnly, app.JobsH.Create)...)
		jobs.PUT("/:id", append(companyOnly, app.JobsH.Update)...)
		jobs.DELETE("/:id", append(companyOnly, app.JobsH.Delete)...)
	}

	return r
}
