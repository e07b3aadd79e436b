package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/handler"
	"github.com/iliyamo/car-service-concierge/internal/middleware"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// RegisterOwner registers the owner's administration endpoints under
// /v1/admin: staff accounts, dealer organisations, the parts inventory
// and invoices.  Everything here requires the owner role.
func RegisterOwner(e *echo.Echo, staff *handler.StaffAdminHandler, dealers *handler.DealerHandler, inv *handler.InventoryHandler, invoices *handler.InvoiceHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(workflow.RoleOwner),
	)

	g.POST("/staff", staff.Create)
	g.GET("/staff", staff.List)
	g.GET("/staff/:id", staff.Get)
	g.PUT("/staff/:id", staff.Update)
	g.DELETE("/staff/:id", staff.Deactivate)

	g.GET("/dealers", dealers.List)
	g.POST("/dealers", dealers.Create)
	g.GET("/dealers/:id", dealers.Get)
	g.PUT("/dealers/:id", dealers.Update)
	g.DELETE("/dealers/:id", dealers.Delete)

	g.GET("/inventory", inv.List)
	g.POST("/inventory", inv.Create)
	g.GET("/inventory/:id", inv.Get)
	g.PUT("/inventory/:id", inv.Update)
	g.DELETE("/inventory/:id", inv.Delete)

	g.GET("/invoices", invoices.List)
	g.GET("/invoices/:id", invoices.Get)
	g.PUT("/invoices/:id", invoices.Update)
}
