package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/enhance"
	"resume-builder/internal/services/health"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupEnhance = "ENHANCE"
)

// RouterDeps holds the handlers mounted under /api/v1.
type RouterDeps struct {
	Config         config.Config
	HealthHandler  *health.Handler
	EnhanceHandler *enhance.Handler
	SessionHandler *sessions.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupEnhance: middleware.PerMinute(deps.Config.EnhanceRatePerMinute, deps.Config.EnhanceBurst),
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	if deps.HealthHandler != nil {
		deps.HealthHandler.RegisterRoutes(api)
	}
	if deps.EnhanceHandler != nil {
		deps.EnhanceHandler.RegisterRoutes(api)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}

	return r
}

// rateGroupFor puts every request that reaches the model provider in the
// ENHANCE group.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return rateGroupDefault
	}
	switch c.FullPath() {
	case "/api/v1/enhance", "/api/v1/sessions/:id/submit":
		return rateGroupEnhance
	}
	return rateGroupDefault
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
