package router

import (
	"github.com/labstack/echo/v4"

	"github.com/msoylu/seatplanner/internal/handler"
	"github.com/msoylu/seatplanner/internal/middleware"
	"github.com/msoylu/seatplanner/internal/model"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Auth        *handler.AuthHandler
	Seats       *handler.SeatHandler
	Assignments *handler.AssignmentHandler
	Customers   *handler.CustomerHandler
	Reports     *handler.ReportHandler
}

// Middlewares groups the cross-cutting middleware applied per group.
// RateLimit guards the auth endpoints; Cache fronts the grid reads.
type Middlewares struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// Register wires all routes.  Anything under /v1 outside /v1/auth
// requires a valid staff token; report routes and destructive customer
// operations additionally require the ADMIN role.
func Register(e *echo.Echo, h Handlers, mw Middlewares, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	if mw.RateLimit != nil {
		auth.Use(mw.RateLimit)
	}
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleAdmin, model.RoleEmployee))

	v1.GET("/me", h.Auth.Me)

	// Seat catalog and the per-day grid are the hottest reads; cache them.
	grid := v1.Group("")
	if mw.Cache != nil {
		grid.Use(mw.Cache)
	}
	grid.GET("/seats", h.Seats.List)
	grid.GET("/seats/layout", h.Seats.Layout)
	grid.GET("/assignments", h.Assignments.ListByDate)

	v1.GET("/seats/:label/assignments/:date", h.Assignments.Lookup)
	v1.PUT("/seats/:label/assignments/:date", h.Assignments.Assign)
	v1.DELETE("/seats/:label/assignments/:date", h.Assignments.Empty)

	v1.GET("/customers", h.Customers.List)
	v1.POST("/customers", h.Customers.Create)
	v1.GET("/customers/:id", h.Customers.Get)
	v1.GET("/customers/:id/visits", h.Customers.Visits)

	admin := v1.Group("")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.PUT("/customers/:id", h.Customers.Update)
	admin.DELETE("/customers/:id", h.Customers.Delete)
	admin.GET("/reports/top-customers", h.Reports.TopCustomers)
	admin.GET("/reports/summary", h.Reports.Summary)
}
