// Package router registers the HTTP routes of the booking API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pitch-booking/internal/handler"
)

// Deps bundles what RegisterRoutes mounts.  Cache wraps the pitch reads and
// BookingLimit wraps the booking writes; either may be nil.  Metrics, when
// set, is served at /metrics.
type Deps struct {
	Pitches      *handler.PitchHandler
	Bookings     *handler.BookingHandler
	Cache        echo.MiddlewareFunc
	BookingLimit echo.MiddlewareFunc
	Metrics      http.Handler
}

// RegisterRoutes mounts the health check, the metrics endpoint and the pitch
// and booking API.  The API lives under /v1; the same handlers are also
// reachable under /api for clients of the original paths.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/health", handler.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	v1 := e.Group("/v1")
	registerPitches(v1, d)
	registerBookings(v1, d)
	v1.GET("/pitches/:id/bookings", d.Bookings.ListPitchBookings)

	api := e.Group("/api")
	registerPitches(api, d)
	registerBookings(api, d)
	api.GET("/bookings/pitch/:id/date/:date", d.Bookings.ListPitchBookings)
}

func registerPitches(g *echo.Group, d Deps) {
	mw := optional(d.Cache)
	g.GET("/pitches", d.Pitches.ListPitches, mw...)
	g.GET("/pitches/:id", d.Pitches.GetPitch, mw...)
}

func registerBookings(g *echo.Group, d Deps) {
	mw := optional(d.BookingLimit)
	g.GET("/bookings", d.Bookings.ListBookings)
	g.POST("/bookings/check-availability", d.Bookings.CheckAvailability)
	g.POST("/bookings", d.Bookings.CreateBooking, mw...)
	g.DELETE("/bookings/:id", d.Bookings.CancelBooking, mw...)
}

func optional(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}
