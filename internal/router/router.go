// Package router maps HTTP routes onto handlers and attaches the
// route-scoped middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dasanworld/concert-reserve/internal/config"
	"github.com/dasanworld/concert-reserve/internal/handler"
	"github.com/dasanworld/concert-reserve/internal/middleware"
)

// RegisterRoutes registers routes with no handler dependencies.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBrowse registers the public concert browse endpoints. These
// are read-only and sit behind the Redis response cache so a crowd
// polling the same seat map during an on-sale does not hammer MySQL.
func RegisterBrowse(e *echo.Echo, h *handler.ConcertHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1/concerts")
	g.Use(middleware.NewResponseCache(cacheCfg, rdb))
	g.GET("", h.List)
	g.GET("/:id", h.Detail)
	g.GET("/:id/seats", h.Seats)
}

// RegisterBooking registers the contended booking endpoints: seat holds
// and the reservation lifecycle. The token-bucket rate limiter fronts
// all of them; holds are the endpoints bots hit hardest.
func RegisterBooking(e *echo.Echo, seats *handler.SeatHandler, reservations *handler.ReservationHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))

	g.POST("/seats/hold", seats.Hold)

	g.POST("/reservations", reservations.Create)
	g.GET("/reservations/:id", reservations.Get)
	g.POST("/reservations/lookup", reservations.Lookup)
	g.DELETE("/reservations/:id", reservations.Cancel)
}

// RegisterJobs registers the operational job endpoints behind the
// shared-secret gate.
func RegisterJobs(e *echo.Echo, h *handler.JobsHandler, jobSecret string) {
	g := e.Group("/jobs")
	g.Use(middleware.RequireJobSecret(jobSecret))
	g.POST("/cleanup-expired-holds", h.CleanupExpiredHolds)
}
