package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/car-service-concierge/internal/config"
	"github.com/iliyamo/car-service-concierge/internal/handler"
	"github.com/iliyamo/car-service-concierge/internal/middleware"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// RegisterStaff registers the concierge/dealer/owner endpoints under
// /v1.  Role gating here is coarse (any staff role); the workflow layer
// decides per request which transitions and fields each role actually
// gets.  The location ping route carries the token-bucket rate limiter
// so a runaway concierge device cannot hammer the row lock.
func RegisterStaff(e *echo.Echo, rq *handler.RequestHandler, notes *handler.NoteHandler, loc *handler.LocationHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(workflow.RoleConcierge, workflow.RoleDealer, workflow.RoleOwner),
	)

	g.GET("/staff/requests", rq.StaffList)
	g.GET("/staff/requests/:id", rq.Get)
	g.POST("/staff/requests/:id/edit", rq.Edit)

	// Dealer hand-back shortcut: In service -> Delivery, forced unassign.
	g.POST("/dealer/requests/:id/set-delivery", rq.SetDelivery,
		middleware.RequireRole(workflow.RoleDealer))

	g.POST("/staff/requests/:id/notes", notes.Create)
	g.GET("/staff/requests/:id/notes", notes.List)

	g.POST("/requests/:id/location/update", loc.Update,
		middleware.RequireRole(workflow.RoleConcierge),
		middleware.NewTokenBucket(rlCfg, rdb))
	g.GET("/staff/requests/:id/location", loc.Get)
}
