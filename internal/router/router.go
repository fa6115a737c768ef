// Package router registers the HTTP surface on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Health   echo.HandlerFunc
	Bookings *handler.BookingHandler
	Reviews  *handler.ReviewHandler
	Catalog  *handler.CatalogHandler
}

// Options carries the cross-cutting settings of the API. A nil Redis
// client disables caching and rate limiting.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Log       *zap.Logger
}

// RegisterRoutes mounts /healthz and the /api tree.
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	e.GET("/healthz", h.Health)

	cache := middleware.NewRedisCache(opt.Cache, opt.Redis, opt.Log)
	purge := middleware.InvalidateOnWrite(opt.Cache, opt.Redis, opt.Log)
	limit := middleware.NewTokenBucket(opt.RateLimit, opt.Redis, opt.Log)
	// admin mutations: token, role, then cache purge once the write succeeds
	write := append(middleware.AdminOnly(opt.JWTSecret), purge)

	api := e.Group("/api")
	registerBookings(api, h.Bookings, limit)
	registerReviews(api, h.Reviews, cache, write)
	api.GET("/shows/:id/seats", h.Catalog.SeatMap)

	registerAdmin(api.Group("/admin"), h, cache, write)
}

func registerBookings(g *echo.Group, b *handler.BookingHandler, limit echo.MiddlewareFunc) {
	g.POST("/bookings", b.Create, limit)
	g.GET("/bookings/user/:email", b.ListByUser)
	g.GET("/bookings/reminders/:email", b.Reminders)
	g.DELETE("/bookings/:id", b.Cancel)
}

func registerReviews(g *echo.Group, r *handler.ReviewHandler, cache echo.MiddlewareFunc, write []echo.MiddlewareFunc) {
	g.POST("/reviews", r.Submit)
	g.PUT("/reviews/moderate/:id", r.Moderate, write...)
	g.GET("/reviews/admin/pending/:adminEmail", r.Pending)
	g.GET("/reviews/event/:eventId", r.ForEvent, cache)
}

func registerAdmin(g *echo.Group, h Handlers, cache echo.MiddlewareFunc, write []echo.MiddlewareFunc) {
	c := h.Catalog

	g.GET("/venues", c.ListVenues)
	g.POST("/create-venue", c.CreateVenue, write...)
	g.PUT("/venues/:id", c.UpdateVenue, write...)
	g.DELETE("/venues/:id", c.DeleteVenue, write...)

	g.GET("/events", c.ListEvents, cache)
	g.POST("/events", c.CreateEvent, write...)
	g.PUT("/events/:id", c.UpdateEvent, write...)
	g.DELETE("/events/:id", c.DeleteEvent, write...)

	g.POST("/create-show", c.CreateShow, write...)
	g.GET("/shows/:eventId", c.ListShows)
	g.GET("/show-details/:id", c.ShowDetails)
	g.PUT("/shows/:id/lock-seats", c.LockSeats, write...)

	g.GET("/bookings", h.Bookings.ListForAdmin)
	g.DELETE("/bookings/:id", h.Bookings.AdminCancel, write...)

	g.GET("/reviews", h.Reviews.AdminPending)
	g.PUT("/reviews/:id", h.Reviews.AdminModerate, write...)
}
