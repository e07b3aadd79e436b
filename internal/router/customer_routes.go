package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/handler"
	"github.com/iliyamo/car-service-concierge/internal/middleware"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the customer role.  Customers create
// and edit their own service requests, manage their cars, and poll the
// concierge position while their car is out for delivery.
func RegisterCustomer(e *echo.Echo, rq *handler.RequestHandler, cars *handler.CarHandler, loc *handler.LocationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(workflow.RoleCustomer),
	)

	g.POST("/requests", rq.Create)
	g.GET("/my-requests", rq.ListMine)
	g.GET("/requests/:id", rq.Get)
	g.POST("/requests/:id/edit", rq.Edit)
	g.DELETE("/requests/:id", rq.Delete)
	g.GET("/requests/:id/invoice", rq.Invoice)
	g.GET("/requests/:id/location", loc.Get)

	g.GET("/my-cars", cars.ListMine)
	g.POST("/cars", cars.Create)
	g.PUT("/cars/:id", cars.Update)
	g.DELETE("/cars/:id", cars.Delete)
}
