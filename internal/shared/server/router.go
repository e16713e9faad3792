package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "slidesage-backend/internal/auth"
	"slidesage-backend/internal/documents"
	"slidesage-backend/internal/services/health"
	"slidesage-backend/internal/shared/config"
	"slidesage-backend/internal/shared/metrics"
	"slidesage-backend/internal/shared/server/middleware"
	"slidesage-backend/internal/shared/server/respond"
	"slidesage-backend/internal/users"
)

// RouterDeps holds handler dependencies for the router.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	DocumentHandler *documents.Handler
	UserHandler     *users.Handler
	GoogleAuth      *googleauth.GoogleService
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(middleware.AuthOptions{
			Verifier:    deps.Verifier,
			AllowGuests: deps.Config.AllowGuests,
			PublicPrefixes: []string{
				"/api/v1/health",
				"/api/v1/metrics",
				"/api/v1/auth/",
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
