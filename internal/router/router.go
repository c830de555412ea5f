// Package router registers the HTTP routes and attaches auth
// middleware to the groups that need it.
package router

import (
	"github.com/labstack/echo/v4"

	"event-booking/internal/handler"
	"event-booking/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints under /v1/auth and the
// profile endpoints under the JWT-protected /v1 group. Logout stays
// outside the protected group so a client holding only a refresh
// token can still revoke it.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateProfile)
}

// RegisterPublic registers the unauthenticated browse and contact
// endpoints. The event listings go through the response cache when
// one is configured.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, ct *handler.ContactHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/events", ev.List, cache)
	e.GET("/v1/events/:id", ev.Get, cache)
	e.POST("/v1/contact", ct.Submit)
}

// RegisterBookings registers the customer booking endpoints. Both
// roles may book; admins booking their own tickets is fine.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))
	g.POST("", b.Create)
	g.GET("", b.List)
	g.DELETE("/:id", b.Cancel)
}

// RegisterAdmin registers the management endpoints under /v1/admin,
// restricted to the ADMIN role.
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/events", ad.CreateEvent)
	g.PUT("/events/:id", ad.UpdateEvent)
	g.DELETE("/events/:id", ad.CancelEvent)
	g.GET("/artists", ad.ListArtists)

	g.GET("/users", ad.ListUsers)
	g.DELETE("/users/:id", ad.DeleteUser)

	g.GET("/bookings", ad.ListBookings)

	g.GET("/contact-messages", ad.ListContactMessages)
	g.PATCH("/contact-messages/:id/read", ad.MarkContactRead)
	g.DELETE("/contact-messages/:id", ad.DeleteContactMessage)
}
