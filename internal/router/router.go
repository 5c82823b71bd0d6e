package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/handler"
	"github.com/Manikandan063/air-ambulance-backend/internal/middleware"
	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// Handlers collects every HTTP handler the API mounts. Grouping them in a
// struct keeps the registration signature stable as endpoints are added.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Patients  *handler.PatientHandler
	Bookings  *handler.BookingHandler
	BookingWS *handler.BookingWSHandler
	Hospitals *handler.HospitalHandler
	Aircraft  *handler.AircraftHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

// RegisterRoutes mounts the whole HTTP surface. The /api group runs the
// auth middleware plus the rate limiter; /health, /api/auth and the
// booking live channel are public.
func RegisterRoutes(e *echo.Echo, h Handlers, authMW, limiter echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Check)

	// Unauthenticated auth flows.
	auth := e.Group("/api/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.POST("/reset-password", h.Auth.ResetPassword)

	// The live channel performs its own handshake and stays outside the
	// auth group.
	e.GET("/api/bookings/ws/:clientId", h.BookingWS.Serve)

	api := e.Group("/api", authMW, limiter)

	api.GET("/auth/me", h.Auth.Me)

	// Booking lifecycle. The static pending/completed routes must be
	// registered on their own segments so they never collide with :id.
	api.POST("/bookings", h.Bookings.Create)
	api.GET("/bookings", h.Bookings.List)
	api.GET("/bookings/pending/count", h.Bookings.PendingCount)
	api.GET("/bookings/completed/stats", h.Bookings.CompletedStats)
	api.GET("/bookings/:id", h.Bookings.Get)
	api.PUT("/bookings/:id", h.Bookings.Update)
	api.PUT("/bookings/:id/emergency", h.Bookings.Emergency)

	// Directory of staff accounts.
	api.GET("/users", h.Users.List, middleware.RequireRole(model.RoleSuperadmin, model.RoleDispatcher))
	api.GET("/users/:id", h.Users.Get, middleware.RequireRole(model.RoleSuperadmin, model.RoleDispatcher))
	api.PUT("/users/:id", h.Users.Update)
	api.DELETE("/users/:id", h.Users.Delete, middleware.RequireRole(model.RoleSuperadmin))

	// Patient records.
	clinical := middleware.RequireRole(model.RoleSuperadmin, model.RoleDispatcher,
		model.RoleHospitalStaff, model.RoleDoctor)
	api.POST("/patients", h.Patients.Create, clinical)
	api.GET("/patients", h.Patients.List)
	api.GET("/patients/critical/count", h.Patients.CriticalCount)
	api.GET("/patients/:id", h.Patients.Get)
	api.PUT("/patients/:id", h.Patients.Update, clinical)
	api.DELETE("/patients/:id", h.Patients.Delete, middleware.RequireRole(model.RoleSuperadmin))

	// Facility and fleet registries.
	registry := middleware.RequireRole(model.RoleSuperadmin, model.RoleDispatcher)
	api.GET("/hospitals", h.Hospitals.List)
	api.GET("/hospitals/:id", h.Hospitals.Get)
	api.POST("/hospitals", h.Hospitals.Create, registry)
	api.PUT("/hospitals/:id", h.Hospitals.Update, registry)
	api.DELETE("/hospitals/:id", h.Hospitals.Delete, middleware.RequireRole(model.RoleSuperadmin))

	api.GET("/aircraft", h.Aircraft.List)
	api.GET("/aircraft/:id", h.Aircraft.Get)
	api.POST("/aircraft", h.Aircraft.Create, registry)
	api.PUT("/aircraft/:id", h.Aircraft.Update, registry)
	api.DELETE("/aircraft/:id", h.Aircraft.Delete, middleware.RequireRole(model.RoleSuperadmin))

	api.GET("/dashboard/recent-bookings", h.Dashboard.RecentBookings)
	api.GET("/dashboard/activity-transfers", h.Dashboard.ActivityTransfers)
}
