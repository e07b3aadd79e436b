package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/car-service-concierge/internal/config"
	"github.com/iliyamo/car-service-concierge/internal/handler"
	"github.com/iliyamo/car-service-concierge/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication at
// all.  Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated dealer directory.  The
// route sits behind the Redis response cache so guests browsing dealers
// do not hit the database on every request; with no Redis client the
// cache middleware is a no-op.
func RegisterPublic(e *echo.Echo, d *handler.DealerHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/dealers", d.Directory, middleware.NewRedisCache(cacheCfg, rdb))
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token
// but no particular role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body or a bearer
	// token, so it is registered without the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
