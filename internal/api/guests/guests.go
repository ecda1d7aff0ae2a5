package guests

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/occupancy"
	guestsService "github.com/anandwan/awaas-backend/internal/service/guests"
)

type GuestsHandler struct {
	log       *zap.Logger
	svc       *guestsService.GuestsService
	auth      gin.HandlerFunc
	rateLimit gin.HandlerFunc
}

// NewGuestsHandler serves guest intake. auth guards the read routes and
// rateLimit (optional) guards registration.
func NewGuestsHandler(log *zap.Logger, svc *guestsService.GuestsService, auth, rateLimit gin.HandlerFunc) *GuestsHandler {
	registerValidators()
	return &GuestsHandler{log: log, svc: svc, auth: auth, rateLimit: rateLimit}
}

func (h *GuestsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/guests")
	if h.rateLimit != nil {
		g.POST("", h.rateLimit, h.register)
	} else {
		g.POST("", h.register)
	}

	protected := r.Group("/api/guests")
	protected.Use(h.auth)
	{
		protected.GET("/all", h.all)
		protected.GET("/stats", h.stats)
	}
}

func (h *GuestsHandler) register(c *gin.Context) {
	var req guestsService.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, occupancy.ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Departure date must not be before arrival date"})
		case errors.Is(err, guestsService.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("Guest registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Guest registered successfully", "id": g.ID})
}

func (h *GuestsHandler) all(c *gin.Context) {
	guests, err := h.svc.All(c.Request.Context())
	if err != nil {
		if errors.Is(err, occupancy.ErrClockUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Clock unavailable"})
			return
		}
		h.log.Error("List all guests failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, guests)
}

func (h *GuestsHandler) stats(c *gin.Context) {
	n, err := h.svc.Count(c.Request.Context())
	if err != nil {
		h.log.Error("Count guests failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalGuests": n})
}
