package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authMiddleware "github.com/anandwan/awaas-backend/internal/middleware"
	authService "github.com/anandwan/awaas-backend/internal/service/auth"
)

type AuthHandler struct {
	log  *zap.Logger
	svc  *authService.AuthService
	auth gin.HandlerFunc
}

func NewAuthHandler(log *zap.Logger, svc *authService.AuthService, auth gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{log: log, svc: svc, auth: auth}
}

func (h *AuthHandler) Register(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/password/request-otp", h.requestPasswordChangeOTP)
		auth.POST("/password/verify-otp", h.verifyPasswordChangeOTP)
	}

	// Protected routes
	protected := r.Group("/api/auth")
	protected.Use(h.auth)
	{
		protected.POST("/logout", h.logout)
		protected.GET("/profile", h.getProfile)
		protected.PUT("/profile", h.updateProfile)
		protected.PUT("/password", h.changePassword)
	}
}

func (h *AuthHandler) internalError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (h *AuthHandler) register(c *gin.Context) {
	var req authService.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, authService.ErrRegistrationClosed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin registration is closed"})
			return
		}
		if errors.Is(err, authService.ErrAdminExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Admin already exists"})
			return
		}
		h.internalError(c, "Register failed", err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
			return
		}
		if errors.Is(err, authService.ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}
		h.internalError(c, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) logout(c *gin.Context) {
	exp, _ := c.Get(authMiddleware.ContextExpiry)
	expires, _ := exp.(time.Time)
	if err := h.svc.Logout(c.Request.Context(), c.GetString(authMiddleware.ContextTokenID), expires); err != nil {
		h.internalError(c, "Logout failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) getProfile(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), c.GetString(authMiddleware.ContextAdminID))
	if err != nil {
		if errors.Is(err, authService.ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}
		h.internalError(c, "Get profile failed", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) updateProfile(c *gin.Context) {
	var req authService.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), c.GetString(authMiddleware.ContextAdminID), req)
	if err != nil {
		if errors.Is(err, authService.ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}
		h.internalError(c, "Update profile failed", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	var req authService.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), c.GetString(authMiddleware.ContextAdminID), req)
	if err != nil {
		switch {
		case errors.Is(err, authService.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		case errors.Is(err, authService.ErrAdminNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		default:
			h.internalError(c, "Change password failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *AuthHandler) requestPasswordChangeOTP(c *gin.Context) {
	var req authService.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.RequestPasswordChangeOTP(c.Request.Context(), req); err != nil {
		h.internalError(c, "Request OTP failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, an OTP has been sent"})
}

func (h *AuthHandler) verifyPasswordChangeOTP(c *gin.Context) {
	var req authService.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.VerifyPasswordChangeOTP(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authService.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		case errors.Is(err, authService.ErrAdminNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		default:
			h.internalError(c, "Verify OTP failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
