package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/api/admin"
	"github.com/anandwan/awaas-backend/internal/api/auth"
	"github.com/anandwan/awaas-backend/internal/api/guests"
	"github.com/anandwan/awaas-backend/internal/config"
	"github.com/anandwan/awaas-backend/internal/middleware"
	"github.com/anandwan/awaas-backend/internal/service/analytics"
	authService "github.com/anandwan/awaas-backend/internal/service/auth"
	"github.com/anandwan/awaas-backend/internal/service/dashboard"
	"github.com/anandwan/awaas-backend/internal/service/donors"
	guestsService "github.com/anandwan/awaas-backend/internal/service/guests"
)

// Services are the dependencies the HTTP layer is built on.
type Services struct {
	Guests    *guestsService.GuestsService
	Auth      *authService.AuthService
	Dashboard *dashboard.DashboardService
	Analytics *analytics.AnalyticsService
	Donors    *donors.DonorsService

	Revocations middleware.RevocationChecker
	// RateLimiter backs the shared registration limit; nil keeps it in-process.
	RateLimiter redis.Scripter
}

// NewEngine returns a gin engine with recovery, request logging and metrics.
// Forwarded client addresses are only honored from trustedProxies; with none,
// ClientIP is the socket peer.
func NewEngine(log *zap.Logger, trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(r *gin.Engine, log *zap.Logger, cfg config.Config, s Services) {
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins())))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Anandwan Awaas",
			"description": "Guest registration and admin backend for Anandwan Awaas.",
			"version":     "1.0.0",
			"docs":        "/docs",
			"endpoints":   []string{"/health", "/api/guests", "/api/auth", "/api/admin"},
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterDocs(r)

	authMW := middleware.Middleware(cfg.JWTSigningSecret, s.Revocations)
	rateLimit := middleware.HybridRateLimit(s.RateLimiter, log, "rate_limit:guests", cfg.RateLimitRPS, cfg.RateLimitBurst)

	guests.NewGuestsHandler(log, s.Guests, authMW, rateLimit).Register(r)
	auth.NewAuthHandler(log, s.Auth, authMW).Register(r)
	admin.NewAdminHandler(log, s.Dashboard, s.Guests, s.Analytics, s.Donors, authMW).Register(r)
}
