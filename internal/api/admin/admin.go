package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/occupancy"
	"github.com/anandwan/awaas-backend/internal/service/analytics"
	"github.com/anandwan/awaas-backend/internal/service/dashboard"
	"github.com/anandwan/awaas-backend/internal/service/donors"
	"github.com/anandwan/awaas-backend/internal/service/guests"
)

// calendarSpan is the range served when calendar-events has no end.
const calendarSpan = 31 * 24 * time.Hour

type AdminHandler struct {
	log       *zap.Logger
	dashboard *dashboard.DashboardService
	guests    *guests.GuestsService
	analytics *analytics.AnalyticsService
	donors    *donors.DonorsService
	auth      gin.HandlerFunc
}

func NewAdminHandler(log *zap.Logger, dashboard *dashboard.DashboardService, guests *guests.GuestsService,
	analytics *analytics.AnalyticsService, donors *donors.DonorsService, auth gin.HandlerFunc) *AdminHandler {
	return &AdminHandler{log: log, dashboard: dashboard, guests: guests, analytics: analytics, donors: donors, auth: auth}
}

func (h *AdminHandler) Register(r *gin.Engine) {
	g := r.Group("/api/admin")
	g.Use(h.auth)
	{
		g.GET("/dashboard-stats", h.dashboardStats)
		g.GET("/guests", h.listGuests)
		g.GET("/guests/:id", h.getGuest)
		g.GET("/calendar-events", h.calendarEvents)
		g.GET("/booking-analytics", h.bookingAnalytics)
		g.GET("/donors", h.listDonors)
		g.POST("/donors", h.createDonor)
		g.GET("/donation-summary", h.donationSummary)
	}
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// fail maps service errors to status codes. Unknown errors are logged and hidden.
func (h *AdminHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, occupancy.ErrClockUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Clock unavailable, try again later"})
	case errors.Is(err, guests.ErrGuestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
	case errors.Is(err, guests.ErrInvalidStatus),
		errors.Is(err, guests.ErrInvalidDate),
		errors.Is(err, guests.ErrInvalidRange),
		errors.Is(err, donors.ErrInvalidMode),
		errors.Is(err, donors.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func queryInt(c *gin.Context, key string) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad " + key})
		return 0, false
	}
	return n, true
}

func (h *AdminHandler) dashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "Dashboard stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) listGuests(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	p, err := h.guests.List(c.Request.Context(), guests.ListRequest{
		Page:      page,
		Limit:     limit,
		Status:    c.Query("status"),
		Purpose:   c.Query("purpose"),
		GroupType: c.Query("groupType"),
		Search:    c.Query("q"),
	})
	if err != nil {
		h.fail(c, "List guests", err)
		return
	}
	success(c, http.StatusOK, p)
}

func (h *AdminHandler) getGuest(c *gin.Context) {
	g, err := h.guests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Get guest", err)
		return
	}
	success(c, http.StatusOK, g)
}

func (h *AdminHandler) calendarEvents(c *gin.Context) {
	var from, to time.Time
	var err error

	if s := c.Query("start"); s != "" {
		if from, err = guests.ParseDate(s); err != nil {
			h.fail(c, "Calendar events", err)
			return
		}
	} else {
		w, err := h.dashboard.Window()
		if err != nil {
			h.fail(c, "Calendar events", err)
			return
		}
		from = w.StartUTC
	}

	if s := c.Query("end"); s != "" {
		if to, err = guests.ParseDate(s); err != nil {
			h.fail(c, "Calendar events", err)
			return
		}
	} else {
		to = from.Add(calendarSpan)
	}

	events, err := h.guests.Calendar(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, "Calendar events", err)
		return
	}
	success(c, http.StatusOK, events)
}

func (h *AdminHandler) bookingAnalytics(c *gin.Context) {
	r, err := h.analytics.Report(c.Request.Context())
	if err != nil {
		h.fail(c, "Booking analytics", err)
		return
	}
	success(c, http.StatusOK, r)
}

func (h *AdminHandler) listDonors(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	p, err := h.donors.List(c.Request.Context(), donors.ListRequest{
		Page:  page,
		Limit: limit,
		Type:  c.Query("type"),
		Mode:  c.Query("mode"),
	})
	if err != nil {
		h.fail(c, "List donors", err)
		return
	}
	success(c, http.StatusOK, p)
}

func (h *AdminHandler) createDonor(c *gin.Context) {
	var req donors.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.donors.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Create donor", err)
		return
	}
	success(c, http.StatusCreated, d)
}

func (h *AdminHandler) donationSummary(c *gin.Context) {
	s, err := h.donors.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, "Donation summary", err)
		return
	}
	success(c, http.StatusOK, s)
}
