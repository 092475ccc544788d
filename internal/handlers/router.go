package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
)

type RouterOptions struct {
	CORSOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty means the client IP is
	// always the peer address.
	TrustedProxies []string
	// BookingLimiter throttles POST /booking when set.
	BookingLimiter *middleware.RateLimiter
	// Realtime serves GET /ws/availability when set.
	Realtime http.Handler
}

func NewRouter(h *Handler, opts RouterOptions) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(h.Log), middleware.Metrics())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Realtime != nil {
		r.GET("/ws/availability", gin.WrapH(opts.Realtime))
	}

	r.GET("/services", h.ListServices)
	r.GET("/available", h.Available)

	booking := []gin.HandlerFunc{h.CreateBooking}
	if opts.BookingLimiter != nil {
		booking = append([]gin.HandlerFunc{opts.BookingLimiter.Limit()}, booking...)
	}
	r.POST("/booking", booking...)

	r.PUT("/user/:email", h.UpsertUser)

	authed := r.Group("/")
	authed.Use(middleware.RequireAuth(h.Tokens))
	{
		authed.GET("/myBookings", h.MyBookings)
		authed.GET("/allUsers", h.ListUsers)
		authed.GET("/user/admin/:email", h.IsAdmin)
	}

	admin := r.Group("/")
	admin.Use(middleware.RequireAuth(h.Tokens), middleware.RequireAdmin(h.Users, h.Log))
	{
		admin.PUT("/user/admin/:email", h.MakeAdmin)
		admin.POST("/doctor", h.AddDoctor)
		admin.GET("/doctors", h.ListDoctors)
		admin.DELETE("/doctor/:email", h.DeleteDoctor)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "Doctors Portal server is up and running")
}
